// Package texts serves texts, their witnesses and their annotations.
package texts

import (
	"context"
	"net/http"
	"strconv"

	"github.com/parkhang/parkhang/internal/problem"
	"github.com/parkhang/parkhang/internal/store"
	"github.com/parkhang/parkhang/route"
)

// Routes is the route table. text_id only matches decimal digits, so texts/abc/ never
// reaches a handler. The detail route also matches without its trailing slash.
type Routes struct {
	list        TextList       `route:"GET /texts/ Texts"`                                  //lint:ignore U1000 Used for structtag routing
	detail      TextDetail     `route:"GET /texts/{text_id:[0-9]+}/? Text"`                 //lint:ignore U1000 Used for structtag routing
	witnesses   WitnessList    `route:"GET /texts/{text_id:[0-9]+}/witnesses/ Witnesses"`     //lint:ignore U1000 Used for structtag routing
	annotations AnnotationList `route:"GET /texts/{text_id:[0-9]+}/annotations/ Annotations"` //lint:ignore U1000 Used for structtag routing
}

// Store is the read side of store.Store used by the handlers.
type Store interface {
	ListTexts(ctx context.Context) ([]store.Text, error)
	GetText(ctx context.Context, id uint64) (*store.Text, error)
	ListWitnesses(ctx context.Context, textID uint64) ([]store.Witness, error)
	ListAnnotations(ctx context.Context, textID uint64) ([]store.Annotation, error)
}

var _ Store = (*store.Store)(nil)

// textID parses the text_id path parameter. The route constraint guarantees digits,
// but the value may still overflow; no such text can exist, so that is a 404.
func textID(r *http.Request) (uint64, error) {
	raw := r.PathValue("text_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, problem.NotFound("text "+raw+" does not exist", err)
	}
	return id, nil
}

func lookupError(err error, what string) error {
	if isNotFound(err) {
		return problem.NotFound(what+" does not exist", err)
	}
	return err
}

func textURL(ctx context.Context, id uint64) (string, error) {
	return route.URLFor(ctx, TextDetail{}, "text_id", id)
}
