package admingen

import (
	"fmt"
	"sync"
)

const (
	classPost    = `App\Entity\Post`
	classComment = `App\Entity\Comment`
	classUser    = `App\Entity\User`
	classTag     = `App\Entity\Tag`
)

// blogProvider describes a small blog: posts with comments, an author and tags.
func blogProvider() *StaticProvider {
	p := NewStaticProvider()

	p.AddEntity(EntityDefinition{Class: classPost, Name: "posts"},
		[]PropertyDescriptor{
			{Name: "id", Type: TypeRef{Name: KindInteger}, ReadOnly: true},
			{Name: "title", Type: TypeRef{Name: KindString}},
			{Name: "body", Type: TypeRef{Name: KindString}},
			{Name: "publishedAt", Type: TypeRef{Name: KindDateTime}},
			{Name: "author_id", Type: TypeRef{Name: KindInteger}},
			{Name: "comments", Type: TypeRef{Name: KindArrayCollection, Params: []TypeRef{{Name: classComment}}}},
			{Name: "tags", Type: TypeRef{Name: KindIdCollection, Params: []TypeRef{{Name: classTag}}}, ReadOnly: true},
		},
		[]AssociationDescriptor{
			{FieldName: "comments", Kind: OneToMany, TargetClass: classComment, MappedBy: "post"},
			{FieldName: "author", Kind: ManyToOne, TargetClass: classUser, JoinColumns: []JoinColumn{{Name: "author_id", ReferencedColumnName: "id"}}},
			{FieldName: "tags", Kind: ManyToMany, TargetClass: classTag},
		},
	)

	p.AddEntity(EntityDefinition{Class: classComment, Name: "comments"},
		[]PropertyDescriptor{
			{Name: "id", Type: TypeRef{Name: KindInteger}, ReadOnly: true},
			{Name: "content", Type: TypeRef{Name: KindString}},
			{Name: "post", Type: TypeRef{Name: classPost}},
		},
		[]AssociationDescriptor{
			{FieldName: "post", Kind: ManyToOne, TargetClass: classPost, JoinColumns: []JoinColumn{{Name: "post_id"}}},
		},
	)

	p.AddEntity(EntityDefinition{Class: classUser, Name: "users"},
		[]PropertyDescriptor{
			{Name: "id", Type: TypeRef{Name: KindInteger}, ReadOnly: true},
			{Name: "username", Type: TypeRef{Name: KindString}},
			{Name: "details", Type: TypeRef{Name: KindString}},
		},
		nil,
	)

	p.AddEntity(EntityDefinition{Class: classTag, Name: "tags"},
		[]PropertyDescriptor{
			{Name: "id", Type: TypeRef{Name: KindInteger}, ReadOnly: true},
			{Name: "name", Type: TypeRef{Name: KindString}},
		},
		nil,
	)

	return p
}

func blogGuesser() StaticReferenceGuesser {
	return StaticReferenceGuesser{
		ByClass: map[string]string{
			classPost: "title",
			classUser: "username",
			classTag:  "name",
		},
		ByField: map[string]string{
			"comments": "post",
		},
	}
}

// seedsFor builds first stage input from definitions.
func seedsFor(defs ...EntityDefinition) []*EntityConfiguration {
	out := make([]*EntityConfiguration, 0, len(defs))
	for _, def := range defs {
		out = append(out, &EntityConfiguration{Class: def.Class, Name: def.Name})
	}
	return out
}

type recordingLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{messages: make(map[string][]string)}
}

func (l *recordingLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[level] = append(l.messages[level], fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(format string, args ...any) { l.record("debug", format, args...) }
func (l *recordingLogger) Info(format string, args ...any)  { l.record("info", format, args...) }
func (l *recordingLogger) Warn(format string, args ...any)  { l.record("warn", format, args...) }
func (l *recordingLogger) Error(format string, args ...any) { l.record("error", format, args...) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages[level])
}
