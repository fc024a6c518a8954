package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	successTemplate = "callback_success.html"
	errorTemplate   = "callback_error.html"

	contentTypeHTML = "text/html; charset=utf-8"
)

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

// callbackPages renders the pages the browser shows after the redirect.
type callbackPages struct {
	appName string
	success *template.Template
	failure *template.Template
}

func newCallbackPages(appName string) (*callbackPages, error) {
	success, err := ParseTemplate(successTemplate)
	if err != nil {
		return nil, err
	}
	failure, err := ParseTemplate(errorTemplate)
	if err != nil {
		return nil, err
	}
	return &callbackPages{appName: appName, success: success, failure: failure}, nil
}

func (p *callbackPages) renderSuccess(w http.ResponseWriter) error {
	return render(w, http.StatusOK, p.success, map[string]string{"AppName": p.appName})
}

func (p *callbackPages) renderError(w http.ResponseWriter, status int, errorCode, description string) error {
	return render(w, status, p.failure, map[string]string{
		"Error":       errorCode,
		"Description": description,
	})
}

// render executes into a buffer first so a template failure still produces a
// complete response with a matching status.
func render(w http.ResponseWriter, status int, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}
