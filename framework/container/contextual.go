package container

// ContextualBuilder implements the fluent contextual binding API: when the
// owner type is constructed and asks for a dependency, give it something
// else than the container-wide binding.
//
//	c.When(container.TypeKey[*PhotoController]()).
//	    Needs(container.TypeKey[Filesystem]()).
//	    Give(container.TypeKey[*S3Filesystem]())
type ContextualBuilder struct {
	container *Container
	owner     Key
	needs     Key
}

// contextualBinding redirects a dependency either to another key or to a
// dedicated resolver.
type contextualBinding struct {
	target   Key
	resolver Resolver
}

// When starts a contextual binding for the constructed type owner.
func (c *Container) When(owner Key) *ContextualBuilder {
	return &ContextualBuilder{container: c, owner: owner}
}

// Needs names the dependency to redirect: a type key for typed parameters,
// a name key for parameters resolved by name.
func (b *ContextualBuilder) Needs(dep Key) *ContextualBuilder {
	b.needs = dep
	return b
}

// Give resolves the dependency from target instead.
func (b *ContextualBuilder) Give(target Key) {
	b.set(contextualBinding{target: target})
}

// GiveValue injects a fixed value.
//
//	c.When(container.TypeKey[*ServiceSettings]()).
//	    Needs(container.Name("foo_db_connection_string")).
//	    GiveValue("postgres://localhost/foo")
func (b *ContextualBuilder) GiveValue(value any) {
	b.set(contextualBinding{resolver: NewInstanceResolver(value)})
}

func (b *ContextualBuilder) set(binding contextualBinding) {
	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contextual[b.owner]; !ok {
		c.contextual[b.owner] = make(map[Key]contextualBinding)
	}
	c.contextual[b.owner][b.needs] = binding
	c.provider = nil
}

// contextualFor looks up a contextual binding for parameter p of owner, by
// declared type first and parameter name second.
func (c *Container) contextualFor(owner Key, p Param) (contextualBinding, bool) {
	m, ok := c.contextual[owner]
	if !ok {
		return contextualBinding{}, false
	}
	if p.Type != nil {
		if b, ok := m[KeyOf(p.Type)]; ok {
			return b, true
		}
	}
	if p.Name != "" {
		if b, ok := m[Name(p.Name)]; ok {
			return b, true
		}
	}
	return contextualBinding{}, false
}
