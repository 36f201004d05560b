// Package web 内嵌的 HTML 页面模板
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
