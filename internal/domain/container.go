package domain

import "time"

// Container is the engine-agnostic snapshot discovery works from.
type Container struct {
	Id      string
	Name    string
	Created time.Time
	Labels  map[string]string
}
