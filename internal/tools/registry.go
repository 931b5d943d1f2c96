package tools

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"credentialing/internal/storage"
	"credentialing/internal/store"
	"credentialing/internal/verification"
	"credentialing/internal/workflow"
	"credentialing/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// identityFields are never trusted from tool input.
var identityFields = []string{"actorType", "actorId", "reviewer"}

// PrincipalFunc resolves the actor for the current session. A nil principal
// means the session is unauthenticated.
type PrincipalFunc func(ctx context.Context) *types.Principal

// FixedPrincipal returns a PrincipalFunc that always yields p.
func FixedPrincipal(p *types.Principal) PrincipalFunc {
	return func(context.Context) *types.Principal {
		if p == nil {
			return nil
		}
		copied := *p
		return &copied
	}
}

type Option func(*Registry)

func WithPrincipal(fn PrincipalFunc) Option {
	return func(r *Registry) { r.principal = fn }
}

// WithAllowedTools restricts the registry to names. A nil slice keeps every
// tool; an empty slice keeps none.
func WithAllowedTools(names []string) Option {
	return func(r *Registry) {
		if names == nil {
			r.allowed = nil
			return
		}
		r.allowed = make(map[string]bool, len(names))
		for _, name := range names {
			r.allowed[name] = true
		}
	}
}

func WithWorkspace(path string) Option {
	return func(r *Registry) { r.workspace = path }
}

func WithPacketStore(packets storage.PacketStore) Option {
	return func(r *Registry) { r.packets = packets }
}

func WithClassifier(classifier Classifier) Option {
	return func(r *Registry) { r.classifier = classifier }
}

func WithVerificationAdapter(verificationType string, adapter verification.Adapter) Option {
	return func(r *Registry) { r.adapters.Set(verificationType, adapter) }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func WithMetrics(metrics *Metrics) Option {
	return func(r *Registry) { r.metrics = metrics }
}

// Registry is the dispatch boundary. Every call is stripped of caller
// identity, validated, authorized against the session principal and only
// then routed to its handler.
type Registry struct {
	repos      *store.Repositories
	machine    *workflow.Machine
	adapters   *verification.Registry
	validate   *validator.Validate
	principal  PrincipalFunc
	allowed    map[string]bool
	workspace  string
	packets    storage.PacketStore
	classifier Classifier
	logger     *logrus.Logger
	metrics    *Metrics

	tools map[string]*Tool
	names []string
}

func New(repos *store.Repositories, opts ...Option) *Registry {
	r := &Registry{
		repos:     repos,
		machine:   workflow.NewMachine(repos),
		adapters:  verification.NewRegistry(),
		validate:  newValidator(),
		principal: FixedPrincipal(nil),
		workspace: ".",
		logger:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.tools = make(map[string]*Tool)
	for _, tool := range catalog() {
		if r.allowed != nil && !r.allowed[tool.Name] {
			continue
		}
		r.tools[tool.Name] = tool
		r.names = append(r.names, tool.Name)
	}
	sort.Strings(r.names)

	return r
}

// SetVerificationAdapter swaps the adapter used for verificationType on this
// registry only.
func (r *Registry) SetVerificationAdapter(verificationType string, adapter verification.Adapter) {
	r.adapters.Set(verificationType, adapter)
}

// Tools returns the registered tools sorted by name.
func (r *Registry) Tools() []*Tool {
	out := make([]*Tool, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// InvokeJSON decodes data as the argument object and dispatches it.
func (r *Registry) InvokeJSON(ctx context.Context, name string, data []byte) (any, error) {
	args := map[string]any{}
	if len(data) > 0 {
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, newValidationError(name, "arguments must be a JSON object")
		}
		if decoded != nil {
			object, ok := decoded.(map[string]any)
			if !ok {
				return nil, newValidationError(name, "arguments must be a JSON object")
			}
			args = object
		}
	}

	return r.Invoke(ctx, name, args)
}

// Invoke runs one tool call through the full dispatch pipeline.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result any, err error) {
	tool, ok := r.tools[name]
	if !ok {
		err = &UnknownToolError{Name: name}
		r.observe(name, false, nil, 0, err)
		return nil, err
	}

	start := time.Now()
	principal := r.principal(ctx)
	defer func() {
		r.observe(name, tool.Mutating, principal, time.Since(start), err)
	}()

	sanitized := stripIdentity(args)

	input, err := tool.decode(r.validate, sanitized)
	if err != nil {
		return nil, err
	}

	if tool.Mutating && principal == nil {
		return nil, &AuthorizationError{
			Tool:   name,
			Reason: "missing authenticated session principal for mutating credentialing tool",
		}
	}

	return tool.handle(ctx, r, input, principal)
}

func stripIdentity(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for key, value := range args {
		out[key] = value
	}
	for _, field := range identityFields {
		delete(out, field)
	}
	return out
}

func (r *Registry) observe(name string, mutating bool, principal *types.Principal, elapsed time.Duration, err error) {
	fields := logrus.Fields{
		"tool":        name,
		"mutating":    mutating,
		"duration_ms": elapsed.Milliseconds(),
	}
	if principal != nil {
		fields["actor_type"] = principal.ActorType
		fields["actor_id"] = principal.ActorID
	}

	entry := r.logger.WithFields(fields)
	if err != nil {
		entry.WithError(err).WithField("kind", ErrorKind(err)).Warn("tool call failed")
	} else {
		entry.Info("tool call")
	}

	if r.metrics != nil {
		r.metrics.observeCall(name, err, elapsed)
	}
}
