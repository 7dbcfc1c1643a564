package types

// BodyFormat identifies how a request body is encoded before sending.
type BodyFormat string

const (
	BodyJSON      BodyFormat = "json"
	BodyForm      BodyFormat = "form"
	BodyGraphQL   BodyFormat = "graphql"
	BodyRaw       BodyFormat = "raw"
	BodyMultipart BodyFormat = "multipart"
)

// AuthKind identifies the authentication variant of a request.
type AuthKind string

const (
	AuthNone   AuthKind = "none"
	AuthBearer AuthKind = "bearer"
	AuthBasic  AuthKind = "basic"
	AuthAPIKey AuthKind = "apikey"
)

// AuthConfig is a tagged variant; only the fields for its Kind are set.
type AuthConfig struct {
	Kind AuthKind `json:"kind" yaml:"kind"`

	// bearer
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// basic
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// apikey
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`     // header or query parameter name
	Value string `json:"value,omitempty" yaml:"value,omitempty"` // the key value
	In    string `json:"in,omitempty" yaml:"in,omitempty"`       // "header" (default) or "query"
}

// TLSConfig contains optional TLS/mTLS settings for the transport.
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}

// RequestDefinition is the parsed, immutable representation of one request.
// Strings throughout may contain unresolved {{name}} placeholders.
type RequestDefinition struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`     // "http" (default)
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"` // definition schema version, "v1" (default)

	Method     string            `json:"method" yaml:"method"`
	URL        string            `json:"url" yaml:"url"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFormat BodyFormat        `json:"bodyFormat,omitempty" yaml:"bodyFormat,omitempty"`

	Auth *AuthConfig `json:"auth,omitempty" yaml:"auth,omitempty"`
	TLS  *TLSConfig  `json:"tls,omitempty" yaml:"tls,omitempty"`

	PreScript  string `json:"preScript,omitempty" yaml:"preScript,omitempty"`
	PostScript string `json:"postScript,omitempty" yaml:"postScript,omitempty"`

	// Extract maps variable names to JMESPath expressions evaluated
	// against the response body after execution.
	Extract map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
}

// ResolvedRequest is structurally identical to RequestDefinition but is
// produced by variable resolution: placeholder-free in strict mode, or with
// unresolved placeholders left verbatim in lenient mode. Never mutated
// after creation.
type ResolvedRequest RequestDefinition

// Response is the outcome of one request execution. Logs, Assertions and
// ScriptError are auxiliary fields populated from script execution.
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
	JSON       any               `json:"-"` // parsed body when valid JSON, nil otherwise

	Duration     int64 `json:"duration"` // milliseconds
	RequestSize  int   `json:"requestSize,omitempty"`
	ResponseSize int   `json:"responseSize,omitempty"`

	Request *ResolvedRequest `json:"request,omitempty"` // echo of the request actually sent

	Logs        []string           `json:"logs,omitempty"`
	Assertions  []AssertionOutcome `json:"assertions,omitempty"`
	ScriptError string             `json:"scriptError,omitempty"` // non-fatal post-script failure
}

// AssertionOutcome is one recorded pass/fail result from a script's
// expect(...) call. Immutable once recorded, ordered by call sequence.
type AssertionOutcome struct {
	Passed   bool   `json:"passed"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// ScriptResult captures everything one script execution produced. Partial
// logs, variables and assertions recorded before a failure are preserved.
type ScriptResult struct {
	Success    bool
	Error      string
	Logs       []string
	Variables  map[string]any
	Assertions []AssertionOutcome
}
