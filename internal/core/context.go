package core

import "context"

type contextKey string

const ctxKeySource contextKey = "import_source"

// Source identifies who submitted an import. It is attached to import logs.
type Source struct {
	ClientIP  string
	UserAgent string
}

// ContextWithSource adds the import source to ctx.
func ContextWithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, ctxKeySource, src)
}

// SourceFromContext extracts the import source. It is zero when unset.
func SourceFromContext(ctx context.Context) Source {
	if v, ok := ctx.Value(ctxKeySource).(Source); ok {
		return v
	}
	return Source{}
}

func (s Source) logArgs() []any {
	var args []any
	if s.ClientIP != "" {
		args = append(args, "client_ip", s.ClientIP)
	}
	if s.UserAgent != "" {
		args = append(args, "user_agent", s.UserAgent)
	}
	return args
}
