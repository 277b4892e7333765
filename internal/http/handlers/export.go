package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adstudio/internal/domain"
	"adstudio/internal/imaging"
	"adstudio/internal/wizard"
	"adstudio/pkg/zip"
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Export downloads the generated results of a wizard as a zip archive.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	s := sess.State.Snapshot()
	assets, err := exportAssets(s)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(assets) == 0 {
		a.fail(w, r, fmt.Errorf("%w: nothing generated yet", domain.ErrPrecondition))
		return
	}
	archive, err := zip.ArchiveAssets(assets, time.Now())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.zip", s.Flow, sess.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func exportAssets(s wizard.Snapshot) ([]zip.Asset, error) {
	var assets []zip.Asset
	if s.Angles != nil {
		assets = append(assets, jsonAsset("angles.json", map[string]any{
			"selected": s.SelectedAngle,
			"angles":   s.Angles,
		}))
	}
	if s.Copies != nil {
		assets = append(assets,
			zip.Asset{Filename: "copies.txt", MIME: "text/plain", Data: []byte(copiesText(s.Copies))},
			jsonAsset("copies.json", s.Copies),
		)
	}
	if s.CopyData != nil {
		assets = append(assets,
			zip.Asset{Filename: "copy.txt", MIME: "text/plain", Data: []byte(creativeCopyText(s.CopyData))},
			jsonAsset("copy.json", s.CopyData),
		)
	}
	if s.Designer != nil {
		assets = append(assets, jsonAsset("designer.json", s.Designer))
	}
	if s.Result != nil {
		mime, data, err := imaging.ParseDataURL(s.Result.ImageDataURL)
		if err != nil {
			return nil, fmt.Errorf("result image: %w", err)
		}
		ext, ok := imageExtensions[mime]
		if !ok {
			ext = ".bin"
		}
		assets = append(assets, zip.Asset{Filename: "result" + ext, MIME: mime, Data: data})
	}
	return assets, nil
}

func jsonAsset(name string, v any) zip.Asset {
	data, _ := json.MarshalIndent(v, "", "  ")
	return zip.Asset{Filename: name, MIME: "application/json", Data: data}
}

func copiesText(copies []domain.GeneratedCopy) string {
	var b strings.Builder
	for i, c := range copies {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "%s\n\n%s\n\n%s\n", c.Headline, c.Body, c.CallToAction)
		if len(c.Hashtags) > 0 {
			fmt.Fprintf(&b, "\n%s\n", strings.Join(c.Hashtags, " "))
		}
	}
	return b.String()
}

func creativeCopyText(c *domain.CreativeCopy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", c.Headline, c.Subheadline)
	for _, f := range c.Features {
		fmt.Fprintf(&b, "- %s: %s\n", f.Title, f.Description)
	}
	fmt.Fprintf(&b, "\n%s\n", c.CallToAction)
	if c.PriceText != "" {
		fmt.Fprintf(&b, "%s\n", c.PriceText)
	}
	return b.String()
}
