package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// ErrNilDepsFatalLogMsg is used if app or a handler dependency is nil.
	ErrNilDepsFatalLogMsg = "app, config, registry or session store is nil"

	// Template names.
	TemplateIndex       = "index"
	TemplateSuccess     = "success"
	TemplateError       = "error"
	TemplateUnavailable = "unavailable"
)
