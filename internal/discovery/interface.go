package discovery

import (
	"context"

	"github.com/docker/docker/api/types/container"
)

type dockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}
