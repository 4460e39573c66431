package revuchat

import "embed"

// TemplateFS contains the embedded HTML templates used for rendering exported
// conversation transcripts.
//
//go:embed templates/*
var TemplateFS embed.FS
