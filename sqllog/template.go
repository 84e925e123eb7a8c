package sqllog

import (
	"fmt"
	"io"
	"strconv"

	"github.com/valyala/fasttemplate"
)

// property is one named value bound to a template hole.
type property struct {
	name  string
	value any
}

// render fills the {Name} holes of template with args in order of appearance.
// Every bound arg is also returned as a property named after its hole; args
// without a hole are returned as arg<N>. Holes without an arg stay verbatim.
// A template fasttemplate cannot parse is returned unchanged.
func render(template string, args []any) (string, []property) {
	props := make([]property, 0, len(args))
	next := 0

	msg, err := fasttemplate.ExecuteFuncStringWithErr(template, "{", "}",
		func(w io.Writer, tag string) (int, error) {
			if next >= len(args) {
				return io.WriteString(w, "{"+tag+"}")
			}
			v := args[next]
			next++
			props = append(props, property{name: tag, value: v})
			return fmt.Fprint(w, v)
		},
	)
	if err != nil {
		msg = template
		props = props[:0]
		next = 0
	}

	for ; next < len(args); next++ {
		props = append(props, property{name: "arg" + strconv.Itoa(next), value: args[next]})
	}

	return msg, props
}
