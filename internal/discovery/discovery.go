package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/halos-dev/homarr-adapter/internal/domain"
	"github.com/rs/zerolog"
)

// Discovery lists running containers and extracts app descriptors from
// their labels.
type Discovery struct {
	cli    dockerClient
	prefix string
	logger zerolog.Logger
}

func New(cli dockerClient, prefix string, logger zerolog.Logger) *Discovery {
	return &Discovery{
		cli:    cli,
		prefix: prefix,
		logger: logger,
	}
}

// DiscoverApps returns descriptors for all running, opted-in containers,
// plus per-container parse failures. One misconfigured container never
// blocks the rest; only the engine query itself can fail the call.
func (d *Discovery) DiscoverApps(ctx context.Context) ([]domain.AppDescriptor, []*InvalidLabelsError, error) {
	opts := container.ListOptions{All: false} // running containers only
	containers, err := d.cli.ContainerList(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("listing containers: %w", err)
	}

	var descriptors []domain.AppDescriptor
	var failures []*InvalidLabelsError
	for _, summary := range containers {
		c := fromContainerSummary(summary)
		if !Enabled(d.prefix, c.Labels) {
			continue
		}
		descriptor, err := ParseAppLabels(d.prefix, c)
		if err != nil {
			labelErr, ok := err.(*InvalidLabelsError)
			if !ok {
				labelErr = NewInvalidLabelsError(c.Name, err.Error())
			}
			d.logger.Warn().Str("container", c.Name).Msg(labelErr.Reason)
			failures = append(failures, labelErr)
			continue
		}
		d.logger.Debug().
			Str("id", descriptor.Id).
			Str("name", descriptor.Name).
			Str("url", descriptor.Url).
			Msg("Discovered app")
		descriptors = append(descriptors, descriptor)
	}

	d.logger.Info().Int("count", len(descriptors)).Msg("Discovered apps from running containers")
	return descriptors, failures, nil
}

func fromContainerSummary(c container.Summary) domain.Container {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	if name == "" && len(c.ID) >= 12 {
		name = c.ID[:12]
	}
	return domain.Container{
		Id:      c.ID,
		Name:    name,
		Created: time.Unix(c.Created, 0),
		Labels:  c.Labels,
	}
}
