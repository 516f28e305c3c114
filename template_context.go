package admingen

import (
	"fmt"
	"strings"

	"github.com/ettle/strcase"
)

// maximum number of target fields listed inside a referenced_list
const maxTargetFields = 3

const fieldSeparator = ",\n            "

// templateEntity is the view of an entity handed to templates. Values are
// plain strings so template comparisons behave.
type templateEntity struct {
	Class            string
	Name             string
	Var              string
	HasRelationships bool
	Fields           []templateField
	ListFields       string
	CreationFields   string
	EditionFields    string
	ShowFields       string
}

type templateField struct {
	Name            string
	Type            string
	ReadOnly        bool
	TargetEntity    string
	TargetVar       string
	ReferencedField string
	Expr            string
}

// TemplateContext builds the variables shared by template based renderers.
func TemplateContext(doc Document, globals map[string]any) map[string]any {
	ctx := map[string]any{
		"title":        "Generated Backend",
		"base_api_url": "/api/",
		"app_module":   "myApp",
	}
	for k, v := range globals {
		ctx[k] = v
	}

	entities := make([]templateEntity, 0, len(doc))
	for _, entity := range doc.Entities() {
		entities = append(entities, newTemplateEntity(entity, doc))
	}
	ctx["entities"] = entities
	return ctx
}

func newTemplateEntity(entity *EntityConfiguration, doc Document) templateEntity {
	view := templateEntity{
		Class:            entity.Class,
		Name:             entity.Name,
		Var:              jsIdentifier(entity.Name),
		HasRelationships: entity.HasRelationships,
	}

	var list, creation, edition, show []string
	for _, field := range entity.Fields {
		if field == nil {
			continue
		}
		tf := newTemplateField(field, doc)
		view.Fields = append(view.Fields, tf)

		show = append(show, tf.Expr)
		if field.Type == FieldTypeReferencedList {
			edition = append(edition, tf.Expr)
			continue
		}
		list = append(list, tf.Expr)
		if !field.ReadOnly {
			creation = append(creation, tf.Expr)
			edition = append(edition, tf.Expr)
		}
	}

	view.ListFields = strings.Join(list, fieldSeparator)
	view.CreationFields = strings.Join(creation, fieldSeparator)
	view.EditionFields = strings.Join(edition, fieldSeparator)
	view.ShowFields = strings.Join(show, fieldSeparator)
	return view
}

func newTemplateField(field *FieldConfiguration, doc Document) templateField {
	tf := templateField{
		Name:            field.Name,
		Type:            string(field.Type),
		ReadOnly:        field.ReadOnly,
		ReferencedField: field.ReferencedField,
	}
	if field.ReferencedEntity != nil {
		tf.TargetEntity = field.ReferencedEntity.Name
		tf.TargetVar = jsIdentifier(field.ReferencedEntity.Name)
	}

	var b strings.Builder
	switch {
	case field.Type == FieldTypeString || field.Type == "":
		fmt.Fprintf(&b, "nga.field('%s')", field.Name)
	default:
		fmt.Fprintf(&b, "nga.field('%s', '%s')", field.Name, field.Type)
	}

	switch field.Type {
	case FieldTypeReference, FieldTypeReferenceMany:
		if tf.TargetVar != "" {
			fmt.Fprintf(&b, ".targetEntity(%s)", tf.TargetVar)
		}
		if field.ReferencedField != "" {
			fmt.Fprintf(&b, ".targetField(nga.field('%s'))", field.ReferencedField)
		}
	case FieldTypeReferencedList:
		if tf.TargetVar != "" {
			fmt.Fprintf(&b, ".targetEntity(%s)", tf.TargetVar)
		}
		if field.ReferencedField != "" {
			fmt.Fprintf(&b, ".targetReferenceField('%s')", field.ReferencedField)
		}
		if targets := targetFields(field, doc); len(targets) > 0 {
			fmt.Fprintf(&b, ".targetFields([%s])", strings.Join(targets, ", "))
		}
	}

	if field.ReadOnly {
		b.WriteString(".editable(false)")
	}

	tf.Expr = b.String()
	return tf
}

func targetFields(field *FieldConfiguration, doc Document) []string {
	if field.ReferencedEntity == nil {
		return nil
	}
	target, ok := doc[field.ReferencedEntity.Name]
	if !ok {
		return nil
	}

	out := make([]string, 0, maxTargetFields)
	for _, f := range target.Fields {
		if f == nil || f.IsRelationship() {
			continue
		}
		out = append(out, fmt.Sprintf("nga.field('%s')", f.Name))
		if len(out) == maxTargetFields {
			break
		}
	}
	return out
}

func jsIdentifier(name string) string {
	id := strcase.ToCamel(name)
	if id == "" {
		return "entity"
	}
	return id
}
