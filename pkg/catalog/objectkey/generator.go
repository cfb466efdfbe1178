package objectkey

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key within namespace for the original file name
	GenerateKey(namespace, fileName string) string
}

// TimestampGenerator builds keys of the form {namespace}/{millis}-{filename}.
// The token never repeats within a process, so two uploads of the same file
// name in the same millisecond still get distinct keys.
type TimestampGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

// NewTimestampGeneratorWithClock is used by tests to pin the clock
func NewTimestampGeneratorWithClock(now func() time.Time) *TimestampGenerator {
	return &TimestampGenerator{now: now}
}

func (g *TimestampGenerator) GenerateKey(namespace, fileName string) string {
	return join(namespace, fmt.Sprintf("%d-%s", g.token(), sanitizeFilename(fileName)))
}

func (g *TimestampGenerator) token() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().UnixMilli()
	if t <= g.last {
		t = g.last + 1
	}
	g.last = t
	return t
}

// UUIDGenerator builds keys of the form {namespace}/{uuid}_{filename}
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateKey(namespace, fileName string) string {
	return join(namespace, fmt.Sprintf("%s_%s", uuid.New(), sanitizeFilename(fileName)))
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(namespace, fileName string) string
}

func NewCustomFuncGenerator(fn func(namespace, fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(namespace, fileName string) string {
	return g.GenerateFunc(namespace, fileName)
}

// NewRecommendedGenerator returns the default generator
func NewRecommendedGenerator() Generator {
	return NewTimestampGenerator()
}

func join(namespace, name string) string {
	namespace = strings.Trim(sanitizePathComponent(namespace), "/")
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// Helper functions for path sanitization
func sanitizeFilename(filename string) string {
	if filename == "" {
		return "file"
	}
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

func sanitizePathComponent(component string) string {
	// slashes are kept so namespaces may nest
	replacer := strings.NewReplacer(
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return strings.ToLower(replacer.Replace(component))
}
