package lesson

// ButtonVariant selects the look of the lesson 01 button partial.
type ButtonVariant string

const (
	VariantDefault ButtonVariant = ""
	VariantRed     ButtonVariant = "red"
	VariantGray    ButtonVariant = "gray"
)

// Button is the input of the reusable button partial.
type Button struct {
	Label   string
	Variant ButtonVariant
}

// Class returns the CSS class for the variant; unknown variants render as the default.
func (b Button) Class() string {
	switch b.Variant {
	case VariantRed:
		return "btn btn-red"
	case VariantGray:
		return "btn btn-gray"
	default:
		return "btn"
	}
}

// DemoButtons are the three buttons composed on the components lesson.
func DemoButtons() []Button {
	return []Button{
		{Label: "Botón 1"},
		{Label: "Botón 2", Variant: VariantRed},
		{Label: "Botón 3", Variant: VariantGray},
	}
}
