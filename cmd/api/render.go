package main

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"path/filepath"

	"covid-dashboard/internal/middleware"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func resolveTemplatePath(name string) string {
	return resolvePath(filepath.Join(templateDir, name))
}

func resolvePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Try going up two levels (for tests running from cmd/api)
		p2 := filepath.Join("..", "..", path)
		if _, err := os.Stat(p2); err == nil {
			return p2
		}
	}
	return path
}

func toJSON(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return template.JS(b)
}

func thousands(n int) string {
	return printer.Sprintf("%d", n)
}

var templateFuncs = template.FuncMap{
	"json":      toJSON,
	"thousands": thousands,
}

type pageWrapper struct {
	View      string
	Data      interface{}
	CSRFToken string
}

// render executes layout.html plus the given view templates. The page is
// buffered so a template error still yields a clean 500.
func render(w http.ResponseWriter, r *http.Request, view string, status int, data interface{}, files ...string) {
	allFiles := []string{resolveTemplatePath("layout.html")}
	for _, f := range files {
		allFiles = append(allFiles, resolveTemplatePath(f))
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).ParseFiles(allFiles...)
	if err != nil {
		logger.Error("template parse failed", zap.String("view", view), zap.Error(err))
		http.Error(w, "Template Parse Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	wrapper := pageWrapper{
		View:      view,
		Data:      data,
		CSRFToken: middleware.CSRFToken(r.Context()),
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", wrapper); err != nil {
		logger.Error("template execute failed", zap.String("view", view), zap.Error(err))
		http.Error(w, "Template Execute Error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("json encode failed", zap.Error(err))
	}
}
