package types

type Config struct {
	Environment   string `envconfig:"ENVIRONMENT" default:"development"`
	DBPath        string `envconfig:"DB_PATH" default:":memory:"`
	WorkspacePath string `envconfig:"WORKSPACE_PATH"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`

	// Session principal for this process. An invalid actor type or an empty
	// actor id leaves the session without a principal.
	ActorType   string `envconfig:"ACTOR_TYPE"`
	ActorID     string `envconfig:"ACTOR_ID"`
	HumanUserID string `envconfig:"HUMAN_USER_ID"`

	// JSON array or comma separated list. Unset exposes every tool.
	AllowedTools string `envconfig:"ALLOWED_TOOLS"`
	Role         string `envconfig:"ROLE"`

	HTTPPort        uint `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeoutSec  uint `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Packet manifests: filesystem, s3 or none
	PacketStore  string `envconfig:"PACKET_STORE" default:"filesystem"`
	PacketBucket string `envconfig:"PACKET_BUCKET"`
	S3Endpoint   string `envconfig:"S3_ENDPOINT"`
	S3Region     string `envconfig:"S3_REGION"`

	TemplatesFile string `envconfig:"TEMPLATES_FILE"`
}
