package container

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Container is the registry of services: key → resolver, plus the alias
// tables used to resolve dependencies by parameter name.
//
// Registration is not meant to race with Build; configure the container
// first, then build it (or let Provider build it) and resolve from the
// result.
type Container struct {
	mu sync.Mutex

	// key → resolver, and keys in registration order
	registry map[Key]Resolver
	order    []Key

	// inferred aliases: name → keys, first registered wins
	aliases    map[string][]Key
	aliasOrder []string

	// exact aliases: name → key
	exactAliases map[string]Key
	exactOrder   []string

	// contextual: owner → dependency → binding
	contextual map[Key]map[Key]contextualBinding

	strict   bool
	logger   *zap.Logger
	observer Observer

	// cached build, reset by every registration
	provider *Provider
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		registry:     make(map[Key]Resolver),
		aliases:      make(map[string][]Key),
		exactAliases: make(map[string]Key),
		contextual:   make(map[Key]map[Key]contextualBinding),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strict reports whether the container runs in strict mode.
func (c *Container) Strict() bool { return c.strict }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind binds resolver r to key. A key can only be bound once.
//
// Outside strict mode, binding a key with an unqualified name also adds
// three inferred aliases for it: the name itself, its lower-case form and
// its snake_case parameter form (CatsController, catscontroller,
// cats_controller).
func (c *Container) Bind(key Key, r Resolver) error {
	if key.IsZero() {
		return errInvalidRegistration(key, "empty key")
	}
	if r == nil {
		return errInvalidRegistration(key, "nil resolver")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.registry[key]; exists {
		return errDuplicateRegistration(key)
	}
	if d, ok := r.(*DynamicResolver); ok && d.key.IsZero() {
		d.key = key
	}
	c.registry[key] = r
	c.order = append(c.order, key)
	c.provider = nil

	if !c.strict {
		if name, ok := shortName(key); ok {
			c.inferAlias(name, key)
			c.inferAlias(strings.ToLower(name), key)
			c.inferAlias(paramName(name), key)
		}
	}

	c.logger.Debug("service bound",
		zap.Stringer("key", key),
		zap.Stringer("lifetime", r.Lifetime()),
		zap.String("kind", kindOf(r)),
	)
	return nil
}

// Spec describes a registration for Register. Exactly one of Instance,
// Factory or Constructor is normally set; with none set, the key's own type
// is constructed from its exported fields.
type Spec struct {
	Instance    any
	Factory     any
	Constructor any
	Lifetime    Lifetime
	ParamNames  []string
}

// Register binds key according to spec.
func (c *Container) Register(key Key, spec Spec) error {
	switch {
	case spec.Instance != nil:
		return c.AddInstance(spec.Instance, As(key))
	case spec.Factory != nil:
		return c.addFactory(spec.Factory, spec.Lifetime, []RegisterOption{As(key)})
	case spec.Constructor != nil:
		return c.addDynamic(spec.Constructor, spec.Lifetime, []RegisterOption{As(key), ParamNames(spec.ParamNames...)})
	case key.typ != nil:
		return c.addDynamic(key.typ, spec.Lifetime, nil)
	}
	return errInvalidRegistration(key, "nothing to construct")
}

// AddInstance registers a pre-built value, by its own type unless As is
// given.
//
//	c.AddInstance(cfg)                                  // *config.Config
//	c.AddInstance(repo, container.As(container.TypeKey[CatsRepository]()))
func (c *Container) AddInstance(instance any, opts ...RegisterOption) error {
	o := applyRegisterOptions(opts)
	if instance == nil {
		return errInvalidRegistration(o.key, "nil instance")
	}
	t := reflect.TypeOf(instance)
	key := KeyOf(t)
	if !o.key.IsZero() {
		if err := checkAssignable(o.key, t); err != nil {
			return err
		}
		key = o.key
	}
	return c.Bind(key, NewInstanceResolver(instance))
}

// AddSingleton registers target with singleton lifetime. target is a
// constructor function or the reflect.Type of a struct (or pointer to
// struct) whose exported fields are injected.
func (c *Container) AddSingleton(target any, opts ...RegisterOption) error {
	return c.addDynamic(target, Singleton, opts)
}

// AddScoped registers target with scoped lifetime.
func (c *Container) AddScoped(target any, opts ...RegisterOption) error {
	return c.addDynamic(target, Scoped, opts)
}

// AddTransient registers target with transient lifetime.
func (c *Container) AddTransient(target any, opts ...RegisterOption) error {
	return c.addDynamic(target, Transient, opts)
}

// AddSingletonFactory registers a factory with singleton lifetime. The
// service type is the factory's result type unless As is given.
func (c *Container) AddSingletonFactory(factory any, opts ...RegisterOption) error {
	return c.addFactory(factory, Singleton, opts)
}

// AddScopedFactory registers a factory with scoped lifetime.
func (c *Container) AddScopedFactory(factory any, opts ...RegisterOption) error {
	return c.addFactory(factory, Scoped, opts)
}

// AddTransientFactory registers a factory with transient lifetime.
func (c *Container) AddTransientFactory(factory any, opts ...RegisterOption) error {
	return c.addFactory(factory, Transient, opts)
}

func (c *Container) addDynamic(target any, lifetime Lifetime, opts []RegisterOption) error {
	o := applyRegisterOptions(opts)
	r, err := NewDynamicResolver(target, lifetime, o.names...)
	if err != nil {
		return err
	}
	key := KeyOf(r.concrete)
	if !o.key.IsZero() {
		if err := checkAssignable(o.key, r.concrete); err != nil {
			return err
		}
		key = o.key
	}
	return c.Bind(key, r)
}

func (c *Container) addFactory(factory any, lifetime Lifetime, opts []RegisterOption) error {
	o := applyRegisterOptions(opts)
	f, err := normalizeFactory(factory)
	if err != nil {
		return err
	}
	key := o.key
	if key.IsZero() {
		if declared(f.out) == nil {
			return errMissingType()
		}
		key = KeyOf(f.out)
	} else if f.out.Kind() != reflect.Interface {
		if err := checkAssignable(key, f.out); err != nil {
			return err
		}
	}
	return c.Bind(key, &FactoryResolver{key: key, factory: f, lifetime: lifetime})
}

func checkAssignable(key Key, concrete reflect.Type) error {
	if key.typ == nil || concrete.AssignableTo(key.typ) {
		return nil
	}
	return errInvalidRegistration(key, fmt.Sprintf("%s is not assignable to %s", concrete, key.typ))
}

// ── Aliases ───────────────────────────────────────────────────────────────────

// AddAlias adds an inferred alias: a parameter name that resolves to key.
func (c *Container) AddAlias(name string, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.strict {
		return errStrictMode("AddAlias")
	}
	if _, ok := c.aliases[name]; ok {
		return errAliasAlreadyDefined(name)
	}
	if _, ok := c.exactAliases[name]; ok {
		return errAliasAlreadyDefined(name)
	}
	c.inferAlias(name, key)
	c.provider = nil
	return nil
}

// AddAliases adds several inferred aliases, in name order.
func (c *Container) AddAliases(values map[string]Key) error {
	for _, name := range sortedNames(values) {
		if err := c.AddAlias(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// SetAlias sets an exact alias. Exact aliases take precedence over inferred
// ones. An existing exact alias is only replaced when override is true.
func (c *Container) SetAlias(name string, key Key, override bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.strict {
		return errStrictMode("SetAlias")
	}
	if _, ok := c.exactAliases[name]; ok {
		if !override {
			return errAliasAlreadyDefined(name)
		}
	} else {
		c.exactOrder = append(c.exactOrder, name)
	}
	c.exactAliases[name] = key
	c.provider = nil
	return nil
}

// SetAliases sets several exact aliases, in name order.
func (c *Container) SetAliases(values map[string]Key, override bool) error {
	for _, name := range sortedNames(values) {
		if err := c.SetAlias(name, values[name], override); err != nil {
			return err
		}
	}
	return nil
}

// Aliases returns the keys an inferred alias points to.
func (c *Container) Aliases(name string) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.aliases[name])
}

// inferAlias must be called with mu held.
func (c *Container) inferAlias(name string, key Key) {
	keys, ok := c.aliases[name]
	if !ok {
		c.aliasOrder = append(c.aliasOrder, name)
	}
	if !slices.Contains(keys, key) {
		c.aliases[name] = append(keys, key)
	}
}

func sortedNames(values map[string]Key) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ── Inspection ────────────────────────────────────────────────────────────────

// Contains reports whether key is bound.
func (c *Container) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.registry[key]
	return ok
}

// Len returns the number of bound keys.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// All iterates over the bindings in registration order.
func (c *Container) All() iter.Seq2[Key, Resolver] {
	c.mu.Lock()
	keys := slices.Clone(c.order)
	resolvers := make([]Resolver, len(keys))
	for i, k := range keys {
		resolvers[i] = c.registry[k]
	}
	c.mu.Unlock()

	return func(yield func(Key, Resolver) bool) {
		for i, k := range keys {
			if !yield(k, resolvers[i]) {
				return
			}
		}
	}
}

// ── Build ─────────────────────────────────────────────────────────────────────

// Provider returns the built provider, building it if no registration
// happened since the last build.
func (c *Container) Provider() (*Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		return c.provider, nil
	}
	return c.build()
}

// Build compiles every registration into a new Provider. Missing
// dependencies, cycles, colliding registrations and broken aliases are
// reported here rather than at first resolve. A failed build leaves the
// container as it was.
func (c *Container) Build() (*Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.build()
}

func (c *Container) build() (*Provider, error) {
	start := time.Now()
	p, err := c.compile()
	elapsed := time.Since(start)

	if c.observer != nil {
		n := 0
		if p != nil {
			n = len(p.entries)
		}
		c.observer.ObserveBuild(n, elapsed, err)
	}
	if err != nil {
		c.logger.Debug("build failed", zap.Error(err))
		return nil, err
	}

	c.provider = p
	c.logger.Info("provider built",
		zap.Int("services", len(c.order)),
		zap.Int("entries", len(p.entries)),
		zap.Duration("elapsed", elapsed),
	)
	return p, nil
}

func (c *Container) compile() (*Provider, error) {
	p := &Provider{
		entries:   make(map[Key]Activator, len(c.order)*2),
		lifetimes: make(map[Key]Lifetime, len(c.order)*2),
		logger:    c.logger,
		observer:  c.observer,
	}
	p.root = newScope(p, c.logger)
	ctx := newResolutionContext(c, p.root)

	for _, key := range c.order {
		r := c.registry[key]

		// Every top-level constructor walk starts its own chain.
		if _, ok := r.(*DynamicResolver); ok {
			ctx.chain = ctx.chain[:0]
		}

		if _, taken := p.entries[key]; taken {
			return nil, errDuplicateRegistration(key)
		}

		// A key compiled earlier as somebody's dependency is reused.
		act, ok := ctx.resolved[key]
		if !ok {
			var err error
			if act, err = r.Compile(ctx); err != nil {
				return nil, err
			}
			ctx.resolved[key] = act
		}
		p.add(key, act, r.Lifetime())
		p.descriptors = append(p.descriptors, Descriptor{Key: key, Lifetime: r.Lifetime(), Kind: kindOf(r)})

		if key.typ == nil {
			continue
		}
		name, ok := shortName(key)
		if !ok {
			continue
		}
		nk := Name(name)
		if _, explicit := c.registry[nk]; explicit {
			// The type's name entry and the name registration would both
			// claim the same key.
			return nil, errDuplicateRegistration(nk)
		}
		if _, taken := p.entries[nk]; !taken {
			p.add(nk, act, r.Lifetime())
		}
	}

	if c.strict {
		return p, nil
	}

	concrete := make(map[Key]bool, len(p.entries))
	for k := range p.entries {
		concrete[k] = true
	}

	for _, name := range c.aliasOrder {
		nk := Name(name)
		if concrete[nk] {
			continue
		}
		target := c.aliases[name][0]
		act, ok := p.entries[target]
		if !ok {
			return nil, errAliasConfiguration(name, target)
		}
		p.add(nk, act, p.lifetimes[target])
	}

	for _, name := range c.exactOrder {
		nk := Name(name)
		if concrete[nk] {
			continue
		}
		target := c.exactAliases[name]
		act, ok := p.entries[target]
		if !ok {
			return nil, errAliasConfiguration(name, target)
		}
		p.add(nk, act, p.lifetimes[target])
	}

	return p, nil
}

// ── Resolution shortcuts ──────────────────────────────────────────────────────

// Resolve resolves key from the current provider, building it if needed.
func (c *Container) Resolve(key Key, scope *ActivationScope) (any, error) {
	p, err := c.Provider()
	if err != nil {
		return nil, err
	}
	return p.Resolve(key, scope)
}

// AResolve is Resolve for services that may depend on async factories.
func (c *Container) AResolve(ctx context.Context, key Key, scope *ActivationScope) (any, error) {
	p, err := c.Provider()
	if err != nil {
		return nil, err
	}
	return p.AResolve(ctx, key, scope)
}

func kindOf(r Resolver) string {
	switch r := r.(type) {
	case *InstanceResolver:
		return "instance"
	case *FactoryResolver:
		if r.Async() {
			return "async-factory"
		}
		return "factory"
	case *DynamicResolver:
		if r.structType != nil {
			return "struct"
		}
		return "constructor"
	default:
		return "custom"
	}
}
