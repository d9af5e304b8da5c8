package texts

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/parkhang/parkhang/internal/store"
	"github.com/parkhang/parkhang/route"
)

type (
	TextList       struct{}
	TextDetail     struct{}
	WitnessList    struct{}
	AnnotationList struct{}
)

type textItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type textDetail struct {
	textItem
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	WitnessesURL   string    `json:"witnesses"`
	AnnotationsURL string    `json:"annotations"`
}

func (TextList) ServeHTTP(w http.ResponseWriter, r *http.Request, st Store) error {
	texts, err := st.ListTexts(r.Context())
	if err != nil {
		return err
	}
	items := make([]textItem, 0, len(texts))
	for _, t := range texts {
		u, err := textURL(r.Context(), t.ID)
		if err != nil {
			return err
		}
		items = append(items, textItem{ID: t.ID, Name: t.Name, URL: u})
	}
	return render(w, r, items, "Texts", textListView(items))
}

func (TextDetail) ServeHTTP(w http.ResponseWriter, r *http.Request, st Store) error {
	id, err := textID(r)
	if err != nil {
		return err
	}
	text, err := st.GetText(r.Context(), id)
	if err != nil {
		return lookupError(err, "text "+strconv.FormatUint(id, 10))
	}
	ctx := r.Context()
	detail := textDetail{
		textItem:  textItem{ID: text.ID, Name: text.Name},
		CreatedAt: text.CreatedAt,
		UpdatedAt: text.UpdatedAt,
	}
	if detail.URL, err = textURL(ctx, text.ID); err != nil {
		return err
	}
	if detail.WitnessesURL, err = route.URLFor(ctx, WitnessList{}, "text_id", text.ID); err != nil {
		return err
	}
	if detail.AnnotationsURL, err = route.URLFor(ctx, AnnotationList{}, "text_id", text.ID); err != nil {
		return err
	}
	return render(w, r, detail, text.Name, textDetailView(detail))
}

func (WitnessList) ServeHTTP(w http.ResponseWriter, r *http.Request, st Store) error {
	id, err := textID(r)
	if err != nil {
		return err
	}
	witnesses, err := st.ListWitnesses(r.Context(), id)
	if err != nil {
		return lookupError(err, "text "+strconv.FormatUint(id, 10))
	}
	if witnesses == nil {
		witnesses = []store.Witness{}
	}
	return render(w, r, witnesses, "Witnesses", witnessListView(witnesses))
}

func (AnnotationList) ServeHTTP(w http.ResponseWriter, r *http.Request, st Store) error {
	id, err := textID(r)
	if err != nil {
		return err
	}
	annotations, err := st.ListAnnotations(r.Context(), id)
	if err != nil {
		return lookupError(err, "text "+strconv.FormatUint(id, 10))
	}
	if annotations == nil {
		annotations = []store.Annotation{}
	}
	return render(w, r, annotations, "Annotations", annotationListView(annotations))
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
