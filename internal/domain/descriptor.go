package domain

import "strings"

// AppDescriptor is the dashboard-relevant view of one opted-in container,
// rebuilt from its labels on every run. Only its Id and the tile id it
// produces are ever persisted.
type AppDescriptor struct {
	Id            string
	ContainerId   string
	ContainerName string
	Name          string
	Description   string
	Url           string
	IconUrl       string
	Category      string
}

// SlugifyName derives the stable descriptor identifier from a display name.
// Lowercased, runs of non-alphanumeric characters collapsed to single
// hyphens. The same label value always yields the same id, so re-created
// containers keep their dashboard identity.
func SlugifyName(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
