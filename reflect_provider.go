package admingen

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
)

const (
	TAG_CRUD = "crud"
	TAG_BUN  = "bun"
	TAG_JSON = "json"
)

// crud tag options understood by the reflection provider
const (
	crudReadOnly = "readonly"
	crudDate     = "date"
	crudIDs      = "ids"
	crudMappedBy = "mapped_by="
	crudInversed = "inversed_by="
	crudKind     = "kind="
)

// ReflectProvider serves class metadata from registered Go structs. Fields
// follow json tag naming, relations follow bun rel and m2m tags.
//
//	type Post struct {
//		ID       int64      `json:"id" crud:"readonly"`
//		Title    string     `json:"title"`
//		Author   *User      `bun:"rel:belongs-to,join:author_id=id" json:"author"`
//		Comments []*Comment `bun:"rel:has-many,join:id=post_id" json:"comments"`
//	}
type ReflectProvider struct {
	mu      sync.RWMutex
	order   []string
	types   map[string]reflect.Type
	classes map[reflect.Type]string
}

func NewReflectProvider() *ReflectProvider {
	return &ReflectProvider{
		types:   make(map[string]reflect.Type),
		classes: make(map[reflect.Type]string),
	}
}

// Register exposes value (a struct, pointer to struct or reflect.Type) under
// the class identifier. An empty class uses the package qualified type name.
func (p *ReflectProvider) Register(class string, value any) error {
	var t reflect.Type
	switch v := value.(type) {
	case reflect.Type:
		t = v
	case nil:
		return NewConfigurationError("cannot register a nil value", map[string]any{"class": class})
	default:
		t = reflect.TypeOf(v)
	}

	t = indirectType(t)
	if t.Kind() != reflect.Struct {
		return NewConfigurationError("registered value must be a struct", map[string]any{
			"class": class,
			"type":  t.String(),
		})
	}

	if class == "" {
		class = qualifiedTypeName(t)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.types[class]; !exists {
		p.order = append(p.order, class)
	}
	p.types[class] = t
	p.classes[t] = class
	return nil
}

// MustRegister is Register that panics, meant for package level setup.
func (p *ReflectProvider) MustRegister(class string, value any) *ReflectProvider {
	if err := p.Register(class, value); err != nil {
		panic(err)
	}
	return p
}

// Definitions lists registered classes in registration order, named after
// their class identifier.
func (p *ReflectProvider) Definitions() []EntityDefinition {
	p.mu.RLock()
	defer p.mu.RUnlock()

	defs := make([]EntityDefinition, 0, len(p.order))
	for _, class := range p.order {
		defs = append(defs, EntityDefinition{Class: class, Name: EntityNameForClass(class)})
	}
	return defs
}

func (p *ReflectProvider) lookup(class string) (reflect.Type, error) {
	p.mu.RLock()
	t, ok := p.types[class]
	p.mu.RUnlock()
	if !ok {
		return nil, NewConfigurationError("class is not registered", map[string]any{"class": class})
	}
	return t, nil
}

func (p *ReflectProvider) classOf(t reflect.Type) string {
	t = baseType(t)
	p.mu.RLock()
	class, ok := p.classes[t]
	p.mu.RUnlock()
	if ok {
		return class
	}
	return qualifiedTypeName(t)
}

func (p *ReflectProvider) isRegistered(t reflect.Type) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.classes[baseType(t)]
	return ok
}

func (p *ReflectProvider) PropertiesOf(class string) ([]PropertyDescriptor, error) {
	t, err := p.lookup(class)
	if err != nil {
		return nil, err
	}
	props := make([]PropertyDescriptor, 0, t.NumField())
	p.collectProperties(t, &props)
	return props, nil
}

func (p *ReflectProvider) collectProperties(t reflect.Type, props *[]PropertyDescriptor) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || skipField(field) {
			continue
		}

		if field.Anonymous {
			embedded := indirectType(field.Type)
			// e.g. bun.BaseModel
			if embedded.Kind() == reflect.Struct && embedded.Name() != "BaseModel" {
				p.collectProperties(embedded, props)
			}
			continue
		}

		*props = append(*props, PropertyDescriptor{
			Name:           strcase.ToCamel(field.Name),
			SerializedName: serializedName(field),
			Type:           p.typeRefOf(field),
			ReadOnly:       hasCrudOption(field, crudReadOnly),
		})
	}
}

func (p *ReflectProvider) typeRefOf(field reflect.StructField) TypeRef {
	t := indirectType(field.Type)

	switch t {
	case reflect.TypeOf(time.Time{}):
		if hasCrudOption(field, crudDate) {
			return TypeRef{Name: KindDate}
		}
		return TypeRef{Name: KindDateTime}
	case reflect.TypeOf(uuid.UUID{}):
		return TypeRef{Name: KindString}
	}

	switch t.Kind() {
	case reflect.Bool:
		return TypeRef{Name: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeRef{Name: KindInteger}
	case reflect.Float32, reflect.Float64:
		return TypeRef{Name: "double"}
	case reflect.String:
		return TypeRef{Name: KindString}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return TypeRef{Name: KindString}
		}
		if p.isRegistered(t.Elem()) {
			kind := KindArrayCollection
			if hasCrudOption(field, crudIDs) {
				kind = KindIdCollection
			}
			return TypeRef{Name: kind, Params: []TypeRef{{Name: p.classOf(t.Elem())}}}
		}
		return TypeRef{Name: "array"}
	case reflect.Map:
		return TypeRef{Name: "array"}
	case reflect.Struct:
		if p.isRegistered(t) {
			return TypeRef{Name: p.classOf(t)}
		}
		return TypeRef{Name: "object"}
	}

	return TypeRef{Name: t.Kind().String()}
}

func (p *ReflectProvider) AssociationsOf(class string) ([]AssociationDescriptor, error) {
	t, err := p.lookup(class)
	if err != nil {
		return nil, err
	}
	assocs := make([]AssociationDescriptor, 0)
	if err := p.collectAssociations(t, t, &assocs); err != nil {
		return nil, err
	}
	return assocs, nil
}

func (p *ReflectProvider) collectAssociations(owner, t reflect.Type, assocs *[]AssociationDescriptor) error {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() || skipField(field) {
			continue
		}

		if field.Anonymous {
			embedded := indirectType(field.Type)
			if embedded.Kind() == reflect.Struct && embedded.Name() != "BaseModel" {
				if err := p.collectAssociations(owner, embedded, assocs); err != nil {
					return err
				}
			}
			continue
		}

		assoc, ok, err := p.associationOf(owner, field)
		if err != nil {
			return err
		}
		if ok {
			*assocs = append(*assocs, assoc)
		}
	}
	return nil
}

func (p *ReflectProvider) associationOf(owner reflect.Type, field reflect.StructField) (AssociationDescriptor, bool, error) {
	bunTag := field.Tag.Get(TAG_BUN)
	isM2M := strings.Contains(bunTag, "m2m:")
	if !isM2M && !strings.Contains(bunTag, "rel:") {
		return AssociationDescriptor{}, false, nil
	}

	assoc := AssociationDescriptor{
		FieldName:   strcase.ToCamel(field.Name),
		TargetClass: p.classOf(field.Type),
		MappedBy:    crudValue(field, crudMappedBy),
		InversedBy:  crudValue(field, crudInversed),
	}

	switch {
	case crudValue(field, crudKind) != "":
		raw := crudValue(field, crudKind)
		kind, ok := ParseAssociationKind(raw)
		if !ok {
			return AssociationDescriptor{}, false, NewUnsupportedAssociationError(p.classOf(owner), AssociationDescriptor{
				FieldName:   assoc.FieldName,
				TargetClass: assoc.TargetClass,
			})
		}
		assoc.Kind = kind
	case isM2M:
		assoc.Kind = ManyToMany
	case strings.Contains(bunTag, "rel:has-one"):
		assoc.Kind = OneToOne
	case strings.Contains(bunTag, "rel:has-many"):
		assoc.Kind = OneToMany
	case strings.Contains(bunTag, "rel:belongs-to"):
		assoc.Kind = ManyToOne
	default:
		rel, _ := splitByComa(extractSubAfter(bunTag, "rel:"))
		kind, ok := ParseAssociationKind(rel)
		if !ok {
			return AssociationDescriptor{}, false, NewUnsupportedAssociationError(p.classOf(owner), AssociationDescriptor{
				FieldName:   assoc.FieldName,
				TargetClass: assoc.TargetClass,
			})
		}
		assoc.Kind = kind
	}

	var sourceCol, targetCol string
	if joinPart := extractSubAfter(bunTag, "join:"); joinPart != "" && !isM2M {
		first, _ := splitByComa(joinPart)
		sourceCol, targetCol = parseJoinClause(first)
	}

	switch assoc.Kind {
	case ManyToOne:
		if sourceCol == "" {
			sourceCol = Tableize(field.Name) + "_id"
			targetCol = "id"
		}
		assoc.JoinColumns = []JoinColumn{{Name: sourceCol, ReferencedColumnName: targetCol}}
	case OneToMany:
		if assoc.MappedBy == "" {
			if targetCol != "" {
				assoc.MappedBy = strings.TrimSuffix(targetCol, "_id")
			} else {
				assoc.MappedBy = strcase.ToCamel(owner.Name())
			}
		}
	}

	return assoc, true, nil
}

func skipField(field reflect.StructField) bool {
	if field.Tag.Get(TAG_CRUD) == "-" {
		return true
	}
	name, _ := splitByComa(field.Tag.Get(TAG_JSON))
	return name == "-"
}

func serializedName(field reflect.StructField) string {
	name, _ := splitByComa(field.Tag.Get(TAG_JSON))
	name = strings.TrimSpace(name)
	if name == "" {
		return Tableize(field.Name)
	}
	return name
}

func crudOptions(field reflect.StructField) []string {
	tag := field.Tag.Get(TAG_CRUD)
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func hasCrudOption(field reflect.StructField, option string) bool {
	for _, part := range crudOptions(field) {
		if part == option {
			return true
		}
	}
	return false
}

func crudValue(field reflect.StructField, prefix string) string {
	for _, part := range crudOptions(field) {
		if strings.HasPrefix(part, prefix) {
			return strings.TrimPrefix(part, prefix)
		}
	}
	return ""
}

func splitByComa(s string) (before, after string) {
	if idx := strings.Index(s, ","); idx != -1 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

func extractSubAfter(s, prefix string) string {
	idx := strings.Index(s, prefix)
	if idx == -1 {
		return ""
	}
	return s[idx+len(prefix):]
}

// parseJoinClause parses join clauses like "user_id=id" or "id=order_id"
func parseJoinClause(joinClause string) (sourceCol, targetCol string) {
	parts := strings.Split(joinClause, "=")
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", ""
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	return t
}

func qualifiedTypeName(t reflect.Type) string {
	t = baseType(t)
	if t.PkgPath() == "" {
		return t.Name()
	}
	return fmt.Sprintf("%s.%s", t.PkgPath(), t.Name())
}
