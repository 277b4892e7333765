package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"adstudio/internal/domain/jsoncfg"
	"adstudio/internal/imaging"
	"adstudio/internal/middleware"
	"adstudio/internal/wizard"
)

type createWizardRequest struct {
	Flow   string               `json:"flow"`
	Inputs *jsoncfg.InputsPatch `json:"inputs,omitempty"`
}

// CreateWizard opens a session. Language and currency default from the
// request locale and country.
func (a *App) CreateWizard(w http.ResponseWriter, r *http.Request) {
	var req createWizardRequest
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	flow, ok := wizard.ParseFlow(req.Flow)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown flow %q", req.Flow))
		return
	}
	if req.Inputs != nil {
		req.Inputs.Normalize()
		if err := req.Inputs.Validate(); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}

	defaults := wizard.DefaultInputs()
	defaults.Language = jsoncfg.LanguageForLocale(middleware.LocaleFromContext(r.Context()))
	defaults.Currency = jsoncfg.CurrencyForCountry(middleware.CountryFromContext(r.Context()))

	sess, err := a.Sessions.Create(flow, defaults)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Inputs != nil {
		if err := sess.Navigator.Apply(*req.Inputs); err != nil {
			_ = a.Sessions.Dispose(sess.ID)
			a.fail(w, r, err)
			return
		}
	}
	a.Logger.Info().Str("session_id", sess.ID).Str("flow", string(flow)).Msg("wizard opened")
	w.Header().Set("Location", "/v1/wizards/"+sess.ID)
	a.json(w, http.StatusCreated, newStateView(sess))
}

func (a *App) GetWizard(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) DeleteWizard(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Dispose(chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) PatchInputs(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var patch jsoncfg.InputsPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sess.Navigator.Apply(patch); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

type dataURLImage struct {
	Name    string `json:"name"`
	DataURL string `json:"data_url"`
}

type uploadImagesRequest struct {
	Images  []dataURLImage `json:"images"`
	Replace bool           `json:"replace"`
}

// UploadImages accepts multipart "images" files or a JSON list of data
// URLs. With replace the list swaps the current images instead of
// appending to them.
func (a *App) UploadImages(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	maxBytes := a.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, int64(imaging.MaxImages)*maxBytes*4/3+1<<20)

	var (
		sources []imaging.Source
		replace bool
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()
		sources = imaging.MultipartSources(r.MultipartForm.File["images"])
		replace, _ = strconv.ParseBool(r.FormValue("replace"))
	} else {
		var req uploadImagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		for i, img := range req.Images {
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("image-%d", i+1)
			}
			sources = append(sources, imaging.DataURLSource(name, img.DataURL))
		}
		replace = req.Replace
	}

	current := 0
	if !replace {
		current = len(sess.State.Inputs().Images)
	}
	if current+len(sources) > imaging.MaxImages {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("a wizard holds at most %d images", imaging.MaxImages))
		return
	}

	images, err := imaging.DecodeAll(r.Context(), sources, maxBytes)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if replace {
		err = sess.Navigator.ReplaceImages(images)
	} else {
		err = sess.Navigator.AddImages(images...)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

type reorderRequest struct {
	Order []int `json:"order"`
}

func (a *App) ReorderImages(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := sess.Navigator.ReorderImages(req.Order); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) DeleteImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "index must be an integer")
		return
	}
	if err := sess.Navigator.RemoveImage(idx); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) StepNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	sess.Navigator.Next()
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) StepBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	sess.Navigator.Back()
	a.json(w, http.StatusOK, newStateView(sess))
}

func (a *App) maxUploadBytes() int64 {
	if a.Config != nil && a.Config.MaxUploadBytes > 0 {
		return a.Config.MaxUploadBytes
	}
	return 8 << 20
}
