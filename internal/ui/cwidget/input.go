package cwidget

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Input is a labelled entry that only reports values its Validator accepts.
type Input[T any] struct {
	widget.BaseWidget

	labelWidget *widget.Label
	entryWidget *widget.Entry
	errorWidget *widget.Label

	LabelText string
	Value     T

	OnChanged func(T)
	Validator func(string) (T, error)
}

// NewIntInput accepts integers in [min, max]. An empty entry falls back to
// value, the input's starting value.
func NewIntInput(label, placeholder string, value, min, max int, onChanged func(int)) *Input[int] {
	input := &Input[int]{
		LabelText: label,
		Value:     value,
		OnChanged: onChanged,
	}

	input.labelWidget = widget.NewLabelWithStyle(input.caption(value), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	input.entryWidget = widget.NewEntry()
	input.entryWidget.SetPlaceHolder(placeholder)

	input.errorWidget = widget.NewLabel("")
	input.errorWidget.Hidden = true
	input.errorWidget.TextStyle = fyne.TextStyle{Italic: true}
	input.errorWidget.Importance = widget.DangerImportance

	input.Validator = func(s string) (int, error) {
		if s == "" {
			return value, nil
		}

		res, err := strconv.Atoi(s)
		if err != nil {
			return value, fmt.Errorf("%q is not a number", s)
		}
		if res < min || res > max {
			return value, fmt.Errorf("must be between %d and %d", min, max)
		}

		return res, nil
	}

	input.entryWidget.OnChanged = func(s string) {
		res, err := input.Validator(s)
		input.SetError(err)

		if err != nil {
			return
		}

		input.Value = res
		input.labelWidget.SetText(input.caption(res))
		if input.OnChanged != nil {
			input.OnChanged(res)
		}
	}

	input.ExtendBaseWidget(input)

	return input
}

func (item *Input[T]) caption(v T) string {
	return fmt.Sprintf("%s: %v", item.LabelText, v)
}

func (item *Input[T]) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewVBox(
		item.labelWidget,
		item.entryWidget,
		item.errorWidget,
	)

	return widget.NewSimpleRenderer(c)
}

func (item *Input[T]) SetError(err error) {
	item.errorWidget.Hidden = err == nil
	if err != nil {
		item.errorWidget.SetText(err.Error())
	}
	item.errorWidget.Refresh()
}

func (item *Input[T]) SetText(text string) {
	item.entryWidget.SetText(text)
}
