package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// ErrUnknownRecipient is returned when a directory name has no address
var ErrUnknownRecipient = errors.New("notify: unknown recipient")

// Directory resolves directory names (team leader, regional head, shared mailboxes) to addresses
type Directory interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// StaticDirectory is a fixed name to address map; names that already look
// like an address resolve to themselves.
type StaticDirectory map[string]string

// Resolve implements Directory
func (d StaticDirectory) Resolve(_ context.Context, name string) (string, error) {
	if address, ok := d[name]; ok && address != "" {
		return address, nil
	}
	if address, ok := d[strings.ToLower(name)]; ok && address != "" {
		return address, nil
	}
	if strings.Contains(name, "@") {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRecipient, name)
}

// LoadDirectory reads a YAML name: address map from any afs URL
func LoadDirectory(ctx context.Context, URL string) (StaticDirectory, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory %v: %w", URL, err)
	}
	ret := StaticDirectory{}
	if err = yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to decode directory %v: %w", URL, err)
	}
	return ret, nil
}
