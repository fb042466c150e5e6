package discovery

import (
	"fmt"
	"strings"

	"github.com/halos-dev/homarr-adapter/internal/domain"
)

// Label keys under the configured prefix (default "homarr").
const (
	labelEnable      = "enable"
	labelName        = "name"
	labelUrl         = "url"
	labelIcon        = "icon"
	labelCategory    = "category"
	labelDescription = "description"

	composeServiceLabel = "com.docker.compose.service"
)

// InvalidLabelsError reports one container whose opt-in labels could not be
// parsed. It fails that container only, never the batch.
type InvalidLabelsError struct {
	ContainerName string
	Reason        string
}

func NewInvalidLabelsError(containerName, reason string) *InvalidLabelsError {
	return &InvalidLabelsError{ContainerName: containerName, Reason: reason}
}

func (e *InvalidLabelsError) Error() string {
	return fmt.Sprintf("container %s: %s", e.ContainerName, e.Reason)
}

// Enabled reports whether the container opted in via <prefix>.enable.
func Enabled(prefix string, labels map[string]string) bool {
	return truthy(labels[prefix+"."+labelEnable])
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// ParseAppLabels maps a container's <prefix>.* labels onto a descriptor.
// The container is assumed to have passed the Enabled check already.
func ParseAppLabels(prefix string, c domain.Container) (domain.AppDescriptor, error) {
	labels := c.Labels

	name := strings.TrimSpace(labels[prefix+"."+labelName])
	if name == "" {
		return domain.AppDescriptor{}, NewInvalidLabelsError(c.Name, fmt.Sprintf("missing required label %s.%s", prefix, labelName))
	}
	url := strings.TrimSpace(labels[prefix+"."+labelUrl])
	if url == "" {
		return domain.AppDescriptor{}, NewInvalidLabelsError(c.Name, fmt.Sprintf("missing required label %s.%s", prefix, labelUrl))
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return domain.AppDescriptor{}, NewInvalidLabelsError(c.Name, fmt.Sprintf("label %s.%s must be an http(s) URL, got %q", prefix, labelUrl, url))
	}

	containerName := c.Name
	if svc := labels[composeServiceLabel]; svc != "" {
		containerName = svc
	}

	return domain.AppDescriptor{
		Id:            domain.SlugifyName(name),
		ContainerId:   c.Id,
		ContainerName: containerName,
		Name:          name,
		Description:   strings.TrimSpace(labels[prefix+"."+labelDescription]),
		Url:           url,
		IconUrl:       strings.TrimSpace(labels[prefix+"."+labelIcon]),
		Category:      strings.TrimSpace(labels[prefix+"."+labelCategory]),
	}, nil
}
