package plugins

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"chestshop/define"
	"chestshop/host"
)

// Console feeds lines typed on the server console to the host as commands sent by
// the console.
type Console struct {
	Prompt string `yaml:"prompt"`
	host   define.Host
	in     io.Reader
	out    io.Writer
}

func (u *Console) New(config []byte) define.Plugin {
	u.Prompt = "> "
	err := yaml.Unmarshal(config, u)
	if err != nil {
		panic(err)
	}
	u.in = os.Stdin
	u.out = os.Stdout
	return u
}

func (u *Console) Inject(h define.Host, collaborationContext map[string]define.Plugin) define.Plugin {
	u.host = h
	return u
}

// Exec dispatches one console line and reports whether any plugin handled it.
func (u *Console) Exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	ev, ok := host.ParseCommand(nil, line)
	if !ok {
		return true
	}
	u.host.Dispatch(ev)
	if !ev.Handled {
		fmt.Fprintf(u.out, "Unknown command: %v\n", ev.Name)
	}
	return ev.Handled
}

func (u *Console) Routine() {
	reader := bufio.NewReader(u.in)
	for {
		fmt.Fprint(u.out, u.Prompt)
		s, err := reader.ReadString('\n')
		if s != "" {
			u.Exec(s)
		}
		if err != nil {
			return
		}
	}
}

func (u *Console) Close() {
}
