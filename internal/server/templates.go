package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"portfolio/internal/logger"

	"github.com/fsnotify/fsnotify"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const layoutTemplate = "layout.html"

// TemplateRenderer manages HTML templates. Each page is parsed together with
// the shared layout. With devMode and a template directory on disk, edits are
// picked up by a file watcher.
type TemplateRenderer struct {
	pages       map[string]*template.Template
	mu          sync.RWMutex
	fsys        fs.FS
	devMode     bool
	templateDir string
	watcher     *fsnotify.Watcher
}

// NewTemplateRenderer creates a new template renderer. An empty templateDir
// uses the templates compiled into the binary.
func NewTemplateRenderer(devMode bool, templateDir string) (*TemplateRenderer, error) {
	tr := &TemplateRenderer{
		devMode:     devMode,
		templateDir: templateDir,
	}

	if templateDir != "" {
		tr.fsys = os.DirFS(templateDir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		tr.fsys = sub
	}

	if err := tr.loadTemplates(); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	if devMode && templateDir != "" {
		if err := tr.watch(); err != nil {
			return nil, fmt.Errorf("failed to watch templates: %w", err)
		}
	}

	return tr, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate":        truncateString,
		"formatDate":      formatDate,
		"formatDateShort": formatDateShort,
		"readTime":        readTimeLabel,
		"join":            strings.Join,
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
	}
}

// loadTemplates parses every page against the layout
func (tr *TemplateRenderer) loadTemplates() error {
	layout, err := fs.ReadFile(tr.fsys, layoutTemplate)
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}

	names, err := fs.Glob(tr.fsys, "*.html")
	if err != nil {
		return err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}

		content, err := fs.ReadFile(tr.fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", name, err)
		}

		tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(string(layout))
		if err != nil {
			return fmt.Errorf("failed to parse layout: %w", err)
		}
		if _, err := tmpl.Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		pages[strings.TrimSuffix(name, path.Ext(name))] = tmpl
	}

	tr.mu.Lock()
	tr.pages = pages
	tr.mu.Unlock()
	return nil
}

// watch reloads the templates whenever an .html file in templateDir changes
func (tr *TemplateRenderer) watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(tr.templateDir); err != nil {
		watcher.Close()
		return err
	}
	tr.watcher = watcher

	log := logger.Get()
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".html" {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := tr.loadTemplates(); err != nil {
					log.Warn("Template reload failed", "file", event.Name, "error", err)
					continue
				}
				log.Debug("Templates reloaded", "file", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("Template watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Render executes the named page with the given data
func (tr *TemplateRenderer) Render(w io.Writer, name string, data interface{}) error {
	tr.mu.RLock()
	tmpl, ok := tr.pages[name]
	tr.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %s not loaded", name)
	}

	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return nil
}

// Close stops the file watcher, if any.
func (tr *TemplateRenderer) Close() error {
	if tr == nil || tr.watcher == nil {
		return nil
	}
	return tr.watcher.Close()
}

// truncateString truncates a string to the specified length and adds "..."
func truncateString(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return strings.TrimSpace(string(runes[:length])) + "..."
}

// formatDate formats a time.Time as "Jan 2, 2006"
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// formatDateShort formats a time.Time as "Jan 2"
func formatDateShort(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2")
}

func readTimeLabel(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min read", minutes)
}
