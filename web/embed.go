// Package web carries the server-rendered assets: the admin and public page
// templates plus the stylesheet served under /static.
package web

import "embed"

//go:embed templates/**/*.html
var Templates embed.FS

//go:embed static/**/*
var Static embed.FS
