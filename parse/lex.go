package parse

import "github.com/google/shlex"

// Split tokenizes a command line with POSIX shell quoting rules: quoted text and escaped
// blanks stay within one token
func Split(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, err
	}

	return args, nil
}
