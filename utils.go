package urlmap

import "strings"

func validatePath(path string) {
	switch {
	case len(path) == 0 || !strings.HasPrefix(path, "/"):
		panic("path must begin with '/' in path '" + path + "'")
	}
}

func validateName(name string) {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		panic("name must not begin or end with '.' in name '" + name + "'")
	}
}

func validateGroupPath(path string) {
	validatePath(path)

	if len(path) > 1 && path[len(path)-1] == '/' {
		panic("group path must not end with a trailing slash in path '" + path + "'")
	}
}
