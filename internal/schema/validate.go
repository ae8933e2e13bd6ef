package schema

import "fmt"

// ValidationError reports the first field of a payload that does not match
// the expected shape.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

func errAt(path, reason string) error {
	return &ValidationError{Path: path, Reason: reason}
}

var subtaskShape = &Shape{Fields: []Field{
	{Name: "title", Kind: String, Required: true, NonEmpty: true},
	{Name: "done", Kind: Bool},
}}

// TaskShape describes one task object. Suggestions are a bare array of these.
var TaskShape = &Shape{Fields: []Field{
	{Name: "title", Kind: String, Required: true, NonEmpty: true},
	{Name: "description", Kind: String},
	{Name: "priority", Kind: Enum, Values: priorityValues(), Default: string(PriorityMedium)},
	{Name: "dueDate", Kind: Date},
	{Name: "labels", Kind: StringList},
	{Name: "subtasks", Kind: ObjectList, Elem: subtaskShape},
}}

var listShape = &Shape{Fields: []Field{
	{Name: "title", Kind: String, Required: true, NonEmpty: true},
	{Name: "tasks", Kind: ObjectList, Elem: TaskShape},
}}

// BoardShape describes a whole generated board.
var BoardShape = &Shape{Fields: []Field{
	{Name: "boardTitle", Kind: String, Required: true, NonEmpty: true},
	{Name: "boardDescription", Kind: String},
	{Name: "lists", Kind: ObjectList, Required: true, MinItems: 1, Elem: listShape},
}}

func priorityValues() []string {
	out := make([]string, 0, len(Priorities))
	for _, p := range Priorities {
		out = append(out, string(p))
	}
	return out
}

// ValidateBoard checks a decoded payload against BoardShape.
func ValidateBoard(payload any) (BoardSpec, error) {
	obj, err := BoardShape.Walk(payload)
	if err != nil {
		return BoardSpec{}, err
	}
	spec := BoardSpec{
		BoardTitle:       obj.str("boardTitle"),
		BoardDescription: obj.str("boardDescription"),
	}
	for _, l := range obj.objects("lists") {
		list := ListSpec{Title: l.str("title"), Tasks: []TaskSpec{}}
		for _, t := range l.objects("tasks") {
			list.Tasks = append(list.Tasks, taskFromObject(t))
		}
		spec.Lists = append(spec.Lists, list)
	}
	return spec, nil
}

// ValidateTasks checks a decoded payload that must be a bare array of tasks.
func ValidateTasks(payload any) ([]TaskSpec, error) {
	objs, err := TaskShape.WalkList(payload)
	if err != nil {
		return nil, err
	}
	out := make([]TaskSpec, 0, len(objs))
	for _, o := range objs {
		out = append(out, taskFromObject(o))
	}
	return out, nil
}

func taskFromObject(o Object) TaskSpec {
	t := TaskSpec{
		Title:       o.str("title"),
		Description: o.str("description"),
		Priority:    ParsePriority(o.str("priority")),
		DueDate:     o.date("dueDate"),
		Labels:      o.stringList("labels"),
		Subtasks:    []SubtaskSpec{},
	}
	for _, s := range o.objects("subtasks") {
		t.Subtasks = append(t.Subtasks, SubtaskSpec{Title: s.str("title"), Done: s.boolean("done")})
	}
	return t
}
