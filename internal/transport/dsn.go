// Package transport implements connection-string parsing, the trivial
// .odbc.ini DSN lookup, and the TCP+TLS dial/retry logic described in
// spec §4.3. The TDS login itself is delegated to a tds.Client supplied
// by the caller (spec §1: the TDS codec is an external collaborator).
package transport

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Params is the parsed form of a connection string (spec §3 Connection
// attributes, §4.3).
type Params struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Encrypt  bool // trustservercertificate inverted: true means NOT trusted, i.e. verify
}

const (
	defaultHost = "localhost"
	defaultPort = 1433
	defaultDB   = "master"
)

// ParseConnectionString parses a semicolon-delimited key=value connection
// string, recognising the keys listed in spec §4.3 case-insensitively.
func ParseConnectionString(s string) (Params, error) {
	p := Params{Host: defaultHost, Port: defaultPort, Database: defaultDB, Encrypt: true}

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "server":
			host, port, err := splitHostPort(val)
			if err != nil {
				return Params{}, err
			}
			p.Host = host
			if port != 0 {
				p.Port = port
			}
		case "database", "initial catalog":
			p.Database = val
		case "uid", "user id":
			p.Username = val
		case "pwd", "password":
			p.Password = val
		case "trustservercertificate":
			trust := strings.EqualFold(val, "true") || val == "1" || strings.EqualFold(val, "yes")
			p.Encrypt = !trust
		}
	}

	return p, nil
}

// splitHostPort parses "server" values of the form "host" or "host,port".
func splitHostPort(val string) (string, int, error) {
	if idx := strings.IndexByte(val, ','); idx >= 0 {
		host := strings.TrimSpace(val[:idx])
		portStr := strings.TrimSpace(val[idx+1:])
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, fmt.Errorf("transport: invalid port %q: %w", portStr, err)
		}
		return host, port, nil
	}
	return val, 0, nil
}

// odbcIniLocations are searched in order; the first file that contains the
// requested section wins (spec §4.3).
var odbcIniLocations = []string{"~/.odbc.ini", "/etc/odbc.ini"}

// ResolveDSN reads ~/.odbc.ini then /etc/odbc.ini, locates the [dsn]
// section (case-insensitive), and assembles a connection string from its
// keys excluding Driver and Description; user/password explicitly
// supplied by the caller override the DSN file's values (spec §4.3).
func ResolveDSN(dsn, overrideUser, overridePassword string) (Params, error) {
	for _, loc := range odbcIniLocations {
		path := loc
		if strings.HasPrefix(path, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				continue
			}
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
		section, err := readIniSection(path, dsn)
		if err != nil {
			continue
		}
		if section == nil {
			continue
		}
		return buildParamsFromSection(section, overrideUser, overridePassword), nil
	}
	return Params{}, fmt.Errorf("transport: DSN %q not found in %v", dsn, odbcIniLocations)
}

func buildParamsFromSection(section map[string]string, overrideUser, overridePassword string) Params {
	var sb strings.Builder
	for k, v := range section {
		lk := strings.ToLower(k)
		if lk == "driver" || lk == "description" {
			continue
		}
		fmt.Fprintf(&sb, "%s=%s;", k, v)
	}
	p, _ := ParseConnectionString(sb.String())
	if overrideUser != "" {
		p.Username = overrideUser
	}
	if overridePassword != "" {
		p.Password = overridePassword
	}
	return p
}

// readIniSection reads a standard INI file and returns the key=value
// pairs of the first [section] matching name case-insensitively, or nil
// if not found.
func readIniSection(path, name string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	target := strings.ToLower(strings.TrimSpace(name))
	var current string
	var result map[string]string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if current == target {
				result = make(map[string]string)
			} else if result != nil {
				break // left our section
			}
			continue
		}
		if result == nil {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		result[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
