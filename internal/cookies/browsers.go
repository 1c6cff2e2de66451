package cookies

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// browser lists where a browser keeps its cookie database. Firefox-family
// browsers are located through profiles.ini, Chromium-family ones through
// a fixed profile path.
type browser struct {
	Name        string
	ProfileInis []string
	Stores      []string
}

func chromiumStores(profile string) []string {
	return []string{
		filepath.Join(profile, "Network", "Cookies"),
		filepath.Join(profile, "Cookies"),
	}
}

// knownBrowsers returns the browsers to try, in order, for the given OS
// and directories. home is the user home, config the per-user config
// root (APPDATA on Windows) and local the per-user local data root
// (LOCALAPPDATA on Windows).
func knownBrowsers(goos, home, config, local string) []browser {
	switch goos {
	case "windows":
		return []browser{
			{Name: "Firefox", ProfileInis: []string{filepath.Join(config, "Mozilla", "Firefox", "profiles.ini")}},
			{Name: "LibreWolf", ProfileInis: []string{filepath.Join(config, "LibreWolf", "profiles.ini")}},
			{Name: "Chrome", Stores: chromiumStores(filepath.Join(local, "Google", "Chrome", "User Data", "Default"))},
			{Name: "Edge", Stores: chromiumStores(filepath.Join(local, "Microsoft", "Edge", "User Data", "Default"))},
			{Name: "Brave", Stores: chromiumStores(filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data", "Default"))},
		}
	case "darwin":
		support := filepath.Join(home, "Library", "Application Support")
		return []browser{
			{Name: "Firefox", ProfileInis: []string{filepath.Join(support, "Firefox", "profiles.ini")}},
			{Name: "LibreWolf", ProfileInis: []string{filepath.Join(support, "librewolf", "profiles.ini")}},
			{Name: "Chrome", Stores: chromiumStores(filepath.Join(support, "Google", "Chrome", "Default"))},
			{Name: "Edge", Stores: chromiumStores(filepath.Join(support, "Microsoft Edge", "Default"))},
			{Name: "Brave", Stores: chromiumStores(filepath.Join(support, "BraveSoftware", "Brave-Browser", "Default"))},
		}
	}
	return []browser{
		{Name: "Firefox", ProfileInis: []string{
			filepath.Join(home, ".mozilla", "firefox", "profiles.ini"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox", "profiles.ini"),
		}},
		{Name: "LibreWolf", ProfileInis: []string{filepath.Join(home, ".librewolf", "profiles.ini")}},
		{Name: "Chrome", Stores: chromiumStores(filepath.Join(config, "google-chrome", "Default"))},
		{Name: "Chromium", Stores: chromiumStores(filepath.Join(config, "chromium", "Default"))},
		{Name: "Edge", Stores: chromiumStores(filepath.Join(config, "microsoft-edge", "Default"))},
		{Name: "Brave", Stores: chromiumStores(filepath.Join(config, "BraveSoftware", "Brave-Browser", "Default"))},
	}
}

func systemBrowsers() []browser {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	config := filepath.Join(home, ".config")
	local := ""
	if runtime.GOOS == "windows" {
		config, local = os.Getenv("APPDATA"), os.Getenv("LOCALAPPDATA")
	}
	return knownBrowsers(runtime.GOOS, home, config, local)
}

// stores returns the existing cookie databases of b.
func (b browser) stores() []string {
	var found []string
	candidates := append([]string(nil), b.Stores...)
	for _, ini := range b.ProfileInis {
		if profile := defaultProfile(ini); profile != "" {
			candidates = append(candidates, filepath.Join(profile, "cookies.sqlite"))
		}
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			found = append(found, p)
		}
	}
	return found
}

// defaultProfile resolves the default profile directory from a
// profiles.ini. An [Install*] Default= entry wins over a [Profile*] with
// Default=1. It returns "" when nothing can be resolved.
func defaultProfile(ini string) string {
	f, err := os.Open(ini)
	if err != nil {
		return ""
	}
	defer f.Close()

	base := filepath.Dir(ini)
	resolve := func(p string) string { return filepath.Join(base, filepath.FromSlash(p)) }

	var (
		section, path    string
		isDefault        bool
		install, profile string
	)
	flush := func() {
		if strings.HasPrefix(section, "Profile") && isDefault && profile == "" && path != "" {
			profile = resolve(path)
		}
	}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		if line[0] == '[' {
			flush()
			section = strings.Trim(line, "[]")
			path, isDefault = "", false
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch {
		case strings.HasPrefix(section, "Install") && k == "Default" && install == "":
			install = resolve(v)
		case k == "Path":
			path = v
		case k == "Default" && v == "1":
			isDefault = true
		}
	}
	flush()
	if install != "" {
		return install
	}
	return profile
}
