package config

// Model is the unified, format-agnostic representation of a site
// configuration file.
type Model struct {
	Site *Site
	// Path is the file the model was loaded from, empty for defaults.
	Path string
}

// Site holds the settings of one site build.
type Site struct {
	Title      string
	Stylesheet string
	Input      string
	Output     string
	Include    []string
	Recursive  bool
	Workers    int
	Params     map[string]any
	Notify     *Notify
}

// Notify configures the live-reload notification sent after each build.
type Notify struct {
	URL       string
	Namespace string
	Event     string
}

// Defaults applied by Normalize.
const (
	DefaultTitle       = "pigeon"
	DefaultWorkers     = 4
	DefaultNotifyEvent = "reload"
)

// DefaultInclude lists the source patterns used when none are configured.
var DefaultInclude = []string{"*.markdown", "*.md"}
