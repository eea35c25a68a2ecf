package helper

import (
	"context"
	"strings"

	"github.com/holon-run/mozhelper/pkg/capability"
)

type fakeFiles struct {
	openReqs []capability.OpenRequest
	saveReqs []capability.SaveRequest
	dirReqs  []capability.DirectoryRequest
	appCalls  int
	appTitle  string
	appParent int64

	selection capability.Selection
	directory string
	app       string
	err       error
}

func (f *fakeFiles) ChooseOpen(ctx context.Context, req capability.OpenRequest) (capability.Selection, error) {
	f.openReqs = append(f.openReqs, req)
	return f.selection, f.err
}

func (f *fakeFiles) ChooseSave(ctx context.Context, req capability.SaveRequest) (capability.Selection, error) {
	f.saveReqs = append(f.saveReqs, req)
	return f.selection, f.err
}

func (f *fakeFiles) ChooseDirectory(ctx context.Context, req capability.DirectoryRequest) (string, error) {
	f.dirReqs = append(f.dirReqs, req)
	return f.directory, f.err
}

func (f *fakeFiles) ChooseApplication(ctx context.Context, title string, parent int64) (string, error) {
	f.appCalls++
	f.appTitle = title
	f.appParent = parent
	return f.app, f.err
}

func (f *fakeFiles) calls() int {
	return len(f.openReqs) + len(f.saveReqs) + len(f.dirReqs) + f.appCalls
}

type fakeProtocols struct {
	proxy    string
	proxyErr error
	known    map[string]bool
	apps     map[string]string
}

func (f *fakeProtocols) ResolveProxy(ctx context.Context, rawURL string) (string, error) {
	return f.proxy, f.proxyErr
}

func (f *fakeProtocols) IsKnownProtocol(ctx context.Context, scheme string) bool {
	return f.known[scheme]
}

func (f *fakeProtocols) AppNameForProtocol(ctx context.Context, scheme string) (string, error) {
	app, ok := f.apps[scheme]
	if !ok {
		return "", capability.ErrNotFound
	}
	return app, nil
}

type fakeMime struct {
	byExt map[string]capability.MimeType
	types map[string]capability.MimeType
	apps  map[string]capability.Application
}

func (f *fakeMime) ByExtension(ctx context.Context, ext string) (capability.MimeType, error) {
	mt, ok := f.byExt[ext]
	if !ok {
		return capability.MimeType{}, capability.ErrNotFound
	}
	return mt, nil
}

func (f *fakeMime) ByName(ctx context.Context, name string) (capability.MimeType, error) {
	mt, ok := f.types[name]
	if !ok {
		return capability.MimeType{}, capability.ErrNotFound
	}
	return mt, nil
}

func (f *fakeMime) PreferredApplication(ctx context.Context, mimeType string) (capability.Application, error) {
	app, ok := f.apps[mimeType]
	if !ok {
		return capability.Application{}, capability.ErrNotFound
	}
	return app, nil
}

type launch struct {
	kind   string
	target string
	args   []string
}

type fakeLauncher struct {
	launches    []launch
	executables map[string]string
	err         error
}

func (f *fakeLauncher) LaunchURL(ctx context.Context, url string) error {
	f.launches = append(f.launches, launch{kind: "url", target: url})
	return f.err
}

func (f *fakeLauncher) LaunchCommand(ctx context.Context, command string, args ...string) error {
	f.launches = append(f.launches, launch{kind: "command", target: command, args: args})
	return f.err
}

func (f *fakeLauncher) LaunchService(ctx context.Context, desktopID string, urls ...string) error {
	f.launches = append(f.launches, launch{kind: "service", target: desktopID, args: urls})
	return f.err
}

func (f *fakeLauncher) FindExecutable(name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return name, nil
	}
	path, ok := f.executables[name]
	if !ok {
		return "", capability.ErrNotFound
	}
	return path, nil
}

type fakeNotifier struct {
	sent []capability.Notification
	err  error
}

func (f *fakeNotifier) Emit(ctx context.Context, n capability.Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

type fakeConfig struct {
	browser  string
	allTypes bool
	err      error
}

func (f *fakeConfig) DefaultBrowser() (string, error) {
	return f.browser, f.err
}

func (f *fakeConfig) SetDefaultBrowser(name string, allTypes bool) error {
	if f.err != nil {
		return f.err
	}
	f.browser = name
	f.allTypes = allTypes
	return nil
}

type fakes struct {
	files     *fakeFiles
	protocols *fakeProtocols
	mime      *fakeMime
	launcher  *fakeLauncher
	notifier  *fakeNotifier
	config    *fakeConfig
}

func newFakes() *fakes {
	return &fakes{
		files: &fakeFiles{},
		protocols: &fakeProtocols{
			known: map[string]bool{"http": true, "https": true, "mailto": true},
			apps:  map[string]string{"mailto": "KMail"},
		},
		mime: &fakeMime{
			byExt: map[string]capability.MimeType{
				"pdf": {Name: "application/pdf", Comment: "PDF document"},
				"xyz": {Name: "chemical/x-xyz", Comment: "XYZ file"},
			},
			types: map[string]capability.MimeType{
				"application/pdf":          {Name: "application/pdf", Comment: "PDF document"},
				"application/octet-stream": {Name: "application/octet-stream", Comment: "unknown"},
			},
			apps: map[string]capability.Application{
				"application/pdf": {ID: "org.kde.okular.desktop", Name: "Okular", Exec: "okular %U"},
				"inode/directory": {ID: "org.kde.dolphin.desktop", Name: "Dolphin", Exec: "dolphin %u"},
			},
		},
		launcher: &fakeLauncher{
			executables: map[string]string{
				"akregator": "/usr/bin/akregator",
				"dolphin":   "/usr/bin/dolphin",
				"vlc":       "/usr/bin/vlc",
			},
		},
		notifier: &fakeNotifier{},
		config:   &fakeConfig{},
	}
}

func (f *fakes) capabilities() capability.Capabilities {
	return capability.Capabilities{
		Files:     f.files,
		Protocols: f.protocols,
		Mime:      f.mime,
		Launcher:  f.launcher,
		Notifier:  f.notifier,
		Config:    f.config,
	}
}
