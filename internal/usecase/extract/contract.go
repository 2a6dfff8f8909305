package extract

import "context"

// Completer asks a language model for a JSON object.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Observer records which extraction path produced each intent.
type Observer interface {
	RecordExtraction(path string)
}
