package driver

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	pipe "github.com/bitfield/script"

	"github.com/mrz1836/simdriver/internal/constants"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// envSection matches the opening of every EnvironmentVariables dictionary,
// in either its populated (<dict>) or empty (<dict/>) form.
var envSection = regexp.MustCompile(regexp.QuoteMeta(constants.ManifestEnvAnchor) + `(\s*)<dict(\s*/)?>`)

// ManifestRewrite reports what RewriteManifest changed.
type ManifestRewrite struct {
	// RootReplaced is false when the template had no root placeholder.
	RootReplaced bool

	// Sections is the number of EnvironmentVariables dictionaries injected into.
	Sections int
}

// RewriteManifest reads the runner manifest template, points its root
// placeholder at root (XML-escaped), injects env into every EnvironmentVariables
// dictionary, and writes the result to outPath. A template with no
// EnvironmentVariables dictionary fails with ErrManifestInjectionFailed.
func RewriteManifest(templatePath, outPath, root string, env map[string]string) (*ManifestRewrite, error) {
	template, err := pipe.File(templatePath).String()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, simerrors.Wrapf(simerrors.ErrMissingRunnerArtifact, "manifest template %s", templatePath)
		}
		return nil, simerrors.Wrap(err, "failed to read manifest template")
	}

	rewritten, rw, err := rewriteManifest(template, root, env)
	if err != nil {
		return nil, err
	}

	if _, err := pipe.Echo(rewritten).WriteFile(outPath); err != nil {
		return nil, simerrors.Wrap(err, "failed to write manifest")
	}
	return rw, nil
}

func rewriteManifest(template, root string, env map[string]string) (string, *ManifestRewrite, error) {
	rw := &ManifestRewrite{RootReplaced: strings.Contains(template, constants.ManifestRootPlaceholder)}

	// Byte-for-byte replace; the template's line endings are kept.
	content := strings.ReplaceAll(template, constants.ManifestRootPlaceholder, xmlEscape(root))

	entries := envEntries(env)
	out := envSection.ReplaceAllStringFunc(content, func(match string) string {
		rw.Sections++
		sub := envSection.FindStringSubmatch(match)
		open := constants.ManifestEnvAnchor + sub[1] + "<dict>"
		if sub[2] != "" {
			return open + entries + "</dict>"
		}
		return open + entries
	})

	if rw.Sections == 0 {
		return "", nil, simerrors.Wrapf(simerrors.ErrManifestInjectionFailed,
			"no %s dictionary in manifest template", constants.ManifestEnvAnchor)
	}
	return out, rw, nil
}

// envEntries renders env as plist key/string pairs in key order.
func envEntries(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("\n\t\t\t<key>")
		b.WriteString(xmlEscape(k))
		b.WriteString("</key>\n\t\t\t<string>")
		b.WriteString(xmlEscape(env[k]))
		b.WriteString("</string>")
	}
	return b.String()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
