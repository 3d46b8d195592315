package config

const SourceFileExt = ".er"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".er", ".d.er"}

// IsTestMode indicates if the program is running in test mode.
// Free variables are printed without their arena ids when set.
var IsTestMode = false

// Namespace of the root builtin scope.
const BuiltinsNamespace = "<builtins>"

// Namespace given to a module scope when no name is supplied.
const DefaultModuleNamespace = "<module>"

// Built-in type names
const (
	ObjTypeName            = "Obj"
	NeverTypeName          = "Never"
	TypeTypeName           = "Type"
	ClassTypeName          = "ClassType"
	TraitTypeName          = "TraitType"
	NoneTypeName           = "NoneType"
	BoolTypeName           = "Bool"
	NatTypeName            = "Nat"
	IntTypeName            = "Int"
	FloatTypeName          = "Float"
	StrTypeName            = "Str"
	FuncTypeName           = "Func"
	ProcTypeName           = "Proc"
	QuantifiedFuncTypeName = "QuantifiedFunc"
	RecordTypeName         = "Record"
	RecordMetaTypeName     = "RecordType"
	ArrayTypeName          = "Array"
	ModuleTypeName         = "Module"
	OrTypeName             = "Or"
)

// Built-in trait names
const (
	EqTraitName   = "Eq"
	OrdTraitName  = "Ord"
	ShowTraitName = "Show"
	AddTraitName  = "Add"
	SubTraitName  = "Sub"
	MulTraitName  = "Mul"
	SeqTraitName  = "Seq"
)

// Associated const holding the result type of an operator trait.
const OutputAssocName = "Output"

// Name of the receiver parameter of a method.
const SelfParamName = "self"

// Built-in function names
const (
	PrintProcName  = "print!"
	LenFuncName    = "len"
	IdFuncName     = "id"
	IfFuncName     = "if"
	MatchFuncName  = "match"
	ImportFuncName = "import"
)

// Defaults for Settings
const (
	DefaultMaxScopeDepth = 512
	DefaultLogLevel      = "warn"
	SettingsFileName     = "typecore.yaml"
	SettingsFileNameAlt  = "typecore.yml"
)
