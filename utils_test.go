package urlmap

import "testing"

func Test_validatePath(t *testing.T) {
	if err := catchPanic(func() { validatePath("") }); err == nil {
		t.Error("an error was expected with an empty path")
	}

	if err := catchPanic(func() { validatePath("foo") }); err == nil {
		t.Error("an error was expected when a path does not begin with slash")
	}

	if err := catchPanic(func() { validatePath("/foo") }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func Test_validateGroupPath(t *testing.T) {
	if err := catchPanic(func() { validateGroupPath("/foo/") }); err == nil {
		t.Error("an error was expected with a trailing slash")
	}

	if err := catchPanic(func() { validateGroupPath("/") }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := catchPanic(func() { validateGroupPath("/foo") }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func Test_validateName(t *testing.T) {
	for _, name := range []string{".api", "api.", "."} {
		if err := catchPanic(func() { validateName(name) }); err == nil {
			t.Errorf("an error was expected with name %q", name)
		}
	}

	for _, name := range []string{"", "api", "api.v1"} {
		if err := catchPanic(func() { validateName(name) }); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func Test_toggleTrailingSlash(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"", "", false},
		{"/", "", false},
		{"/foo", "/foo/", true},
		{"/foo/", "/foo", true},
		{"/foo/bar/", "/foo/bar", true},
	}

	for _, tt := range tests {
		got, ok := toggleTrailingSlash(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("toggleTrailingSlash(%q) == %q, %v, want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func Test_joinPath(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"", "/foo", "/foo"},
		{"/", "/foo", "/foo"},
		{"/api", "/foo", "/api/foo"},
		{"/api/", "/foo", "/api/foo"},
		{"/api", "/", "/api/"},
	}

	for _, tt := range tests {
		if got := joinPath(tt.prefix, tt.path); got != tt.want {
			t.Errorf("joinPath(%q, %q) == %q, want %q", tt.prefix, tt.path, got, tt.want)
		}
	}
}

func Test_joinEndpoint(t *testing.T) {
	if got := joinEndpoint("", "index"); got != "index" {
		t.Errorf("joinEndpoint() == %q, want %q", got, "index")
	}

	if got := joinEndpoint("api.v1", "index"); got != "api.v1.index" {
		t.Errorf("joinEndpoint() == %q, want %q", got, "api.v1.index")
	}
}
