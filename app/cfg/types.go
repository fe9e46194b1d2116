package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port              string
	BaseUrl           string
	FeedsDir          string
	FetchTimeout      int
	MaxBodySize       int64
	AllowPrivateHosts bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
