package jsast

// Unit is everything extracted from one file.
type Unit struct {
	Path      string
	Functions []Function
	Classes   []Class
	Branches  []Branching
	News      []Instantiation
	Bindings  []Binding
}

// Function is a function, method or arrow function with a body.
type Function struct {
	Name    string
	Line    int
	EndLine int

	// BodyLines counts non-blank lines inside the body braces.
	BodyLines int

	// Complexity is 1 plus the decision points in the body, not counting
	// nested functions.
	Complexity int
}

// Class lists the methods callers can reach from outside the class.
type Class struct {
	Name          string
	Line          int
	PublicMethods []string
}

// Branching kinds.
const (
	KindIfChain = "if/else if chain"
	KindSwitch  = "switch statement"
)

// Branching is an if/else-if chain or a switch statement.
type Branching struct {
	Kind     string
	Line     int
	Branches int
	Snippet  string
}

// Instantiation is a `new X(...)` expression.
type Instantiation struct {
	Class string
	Line  int
	Text  string
}

// Binding kinds.
const (
	BindingVariable  = "variable"
	BindingFunction  = "function"
	BindingParameter = "parameter"
	BindingCatch     = "catch parameter"
	BindingClass     = "class"
	BindingMethod    = "method"
)

// Binding is a declared name.
type Binding struct {
	Name string
	Line int
	Kind string
}
