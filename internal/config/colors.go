package config

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Color represents a color in the application
type Color string

const (
	// DefaultColor represents a default color
	DefaultColor Color = "default"

	// TransparentColor represents the terminal bg color
	TransparentColor Color = "-"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns color as string
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor || c == TransparentColor {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == TransparentColor || c == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// BodyColors are the base foreground and background
type BodyColors struct {
	FgColor Color `yaml:"fgColor"`
	BgColor Color `yaml:"bgColor"`
}

// FrameColors style borders and titles
type FrameColors struct {
	BorderColor Color `yaml:"borderColor"`
	FocusColor  Color `yaml:"focusColor"`
	TitleColor  Color `yaml:"titleColor"`
}

// HeaderColors style the page title bar
type HeaderColors struct {
	TitleColor      Color `yaml:"titleColor"`
	BreadcrumbColor Color `yaml:"breadcrumbColor"`
	ActiveColor     Color `yaml:"activeColor"`
	OfflineColor    Color `yaml:"offlineColor"`
}

// StatusColors style notifications by level
type StatusColors struct {
	InfoColor     Color `yaml:"infoColor"`
	WarningColor  Color `yaml:"warningColor"`
	ErrorColor    Color `yaml:"errorColor"`
	SuccessColor  Color `yaml:"successColor"`
	ProgressColor Color `yaml:"progressColor"`
}

// ColorsConfig defines the complete color configuration
type ColorsConfig struct {
	Body   BodyColors   `yaml:"body"`
	Frame  FrameColors  `yaml:"frame"`
	Header HeaderColors `yaml:"header"`
	Status StatusColors `yaml:"status"`
}

// DefaultColors returns the dark theme
func DefaultColors() *ColorsConfig {
	return &ColorsConfig{
		Body: BodyColors{
			FgColor: NewColor("#f8f8f2"),
			BgColor: NewColor("#282a36"),
		},
		Frame: FrameColors{
			BorderColor: NewColor("#44475a"),
			FocusColor:  NewColor("#6272a4"),
			TitleColor:  NewColor("#f8f8f2"),
		},
		Header: HeaderColors{
			TitleColor:      NewColor("#bd93f9"),
			BreadcrumbColor: NewColor("#6272a4"),
			ActiveColor:     NewColor("#50fa7b"),
			OfflineColor:    NewColor("#ff5555"),
		},
		Status: StatusColors{
			InfoColor:     NewColor("#8be9fd"),
			WarningColor:  NewColor("#f1fa8c"),
			ErrorColor:    NewColor("#ff5555"),
			SuccessColor:  NewColor("#50fa7b"),
			ProgressColor: NewColor("#ffb86c"),
		},
	}
}

// LightColors returns the light theme
func LightColors() *ColorsConfig {
	return &ColorsConfig{
		Body: BodyColors{
			FgColor: NewColor("#24292f"),
			BgColor: NewColor("#ffffff"),
		},
		Frame: FrameColors{
			BorderColor: NewColor("#d0d7de"),
			FocusColor:  NewColor("#0969da"),
			TitleColor:  NewColor("#24292f"),
		},
		Header: HeaderColors{
			TitleColor:      NewColor("#8250df"),
			BreadcrumbColor: NewColor("#57606a"),
			ActiveColor:     NewColor("#1a7f37"),
			OfflineColor:    NewColor("#cf222e"),
		},
		Status: StatusColors{
			InfoColor:     NewColor("#0969da"),
			WarningColor:  NewColor("#9a6700"),
			ErrorColor:    NewColor("#cf222e"),
			SuccessColor:  NewColor("#1a7f37"),
			ProgressColor: NewColor("#bc4c00"),
		},
	}
}
