package mydups

// Context attached to every record stored in a source index skiplist
const (
	SourceContext = "source"
)

// Output formats
const (
	FormatHuman   = "human"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
	FormatFdupes  = "fdupes"
)

// Defaults used when neither a config file nor an override supplies a value
const (
	DefaultHashAlgorithm = "crc32"
	DefaultOutputFormat  = FormatHuman
	DefaultHashWorkers   = 1
	DefaultHashBuffer    = "2M"
	DefaultMmapLimit     = "64M"
	MaxHashWorkers       = 64
	MaxVerboseLevel      = 3
)

const (
	skiplistMaxLevels = 8
	reportBatchLines  = 256
	maxIovecs         = 1024 // IOV_MAX on Linux
)
