package scene

import (
	"encoding/json"
	"fmt"
	"os"
)

// Patch is a partial ControlParams document. Every field is optional: nil
// means "keep the base value". Top-level scalar and array fields overwrite;
// nested records merge one level deep, so a record patch that sets only
// strokeWidthMid leaves the other layer fields untouched. Fields nested
// below that level (Fill, Orbs) are replaced wholesale when present.
type Patch struct {
	Background      *string               `json:"background,omitempty"`
	BackgroundOrbs  *OrbGroupPatch        `json:"backgroundOrbs,omitempty"`
	ForegroundOrbs  *OrbGroupPatch        `json:"foregroundOrbs,omitempty"`
	Silhouette      *MainSilhouettePatch  `json:"silhouette,omitempty"`
	BackSilhouette  *SilhouetteLayerPatch `json:"backSilhouette,omitempty"`
	InnerSilhouette *SilhouetteLayerPatch `json:"innerSilhouette,omitempty"`
	DirectionalBlur *DirectionalBlurPatch `json:"directionalBlur,omitempty"`
}

// OrbGroupPatch partially updates an OrbGroup.
type OrbGroupPatch struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Orbs    *[]Orb `json:"orbs,omitempty"`
}

// MainSilhouettePatch partially updates the main silhouette fill.
type MainSilhouettePatch struct {
	Enabled *bool      `json:"enabled,omitempty"`
	Fill    *FillStyle `json:"fill,omitempty"`
	OffsetX *float64   `json:"offsetX,omitempty"`
	OffsetY *float64   `json:"offsetY,omitempty"`
}

// SilhouetteLayerPatch partially updates one stroke layer.
type SilhouetteLayerPatch struct {
	Enabled        *bool      `json:"enabled,omitempty"`
	StrokeWidth    *float64   `json:"strokeWidth,omitempty"`
	StrokeWidthMid *float64   `json:"strokeWidthMid,omitempty"`
	StrokeWidthEnd *float64   `json:"strokeWidthEnd,omitempty"`
	Feather        *float64   `json:"feather,omitempty"`
	FeatherMid     *float64   `json:"featherMid,omitempty"`
	FeatherEnd     *float64   `json:"featherEnd,omitempty"`
	Scale          *float64   `json:"scale,omitempty"`
	Fill           *FillStyle `json:"fill,omitempty"`
	Opacity        *float64   `json:"opacity,omitempty"`
	OffsetX        *float64   `json:"offsetX,omitempty"`
	OffsetY        *float64   `json:"offsetY,omitempty"`
}

// DirectionalBlurPatch partially updates the directional blur.
type DirectionalBlurPatch struct {
	Enabled     *bool    `json:"enabled,omitempty"`
	StartX      *float64 `json:"startX,omitempty"`
	StartY      *float64 `json:"startY,omitempty"`
	EndX        *float64 `json:"endX,omitempty"`
	EndY        *float64 `json:"endY,omitempty"`
	StartAmount *float64 `json:"startAmount,omitempty"`
	EndAmount   *float64 `json:"endAmount,omitempty"`
}

// Apply merges the patch over base and returns the result. base is not
// modified. Merge laws: Apply of an empty patch returns base unchanged;
// every key present in the patch overwrites (or, for nested records,
// shallow-merges into) the corresponding base field.
func (p *Patch) Apply(base ControlParams) ControlParams {
	out := base
	if p == nil {
		return out
	}
	if p.Background != nil {
		out.Background = *p.Background
	}
	if p.BackgroundOrbs != nil {
		out.BackgroundOrbs = p.BackgroundOrbs.apply(base.BackgroundOrbs)
	}
	if p.ForegroundOrbs != nil {
		out.ForegroundOrbs = p.ForegroundOrbs.apply(base.ForegroundOrbs)
	}
	if p.Silhouette != nil {
		out.Silhouette = p.Silhouette.apply(base.Silhouette)
	}
	if p.BackSilhouette != nil {
		out.BackSilhouette = p.BackSilhouette.apply(base.BackSilhouette)
	}
	if p.InnerSilhouette != nil {
		inner := SilhouetteLayer{Scale: 1, Opacity: 1}
		if base.InnerSilhouette != nil {
			inner = *base.InnerSilhouette
		}
		merged := p.InnerSilhouette.apply(inner)
		out.InnerSilhouette = &merged
	}
	if p.DirectionalBlur != nil {
		out.DirectionalBlur = p.DirectionalBlur.apply(base.DirectionalBlur)
	}
	return out
}

func (p *OrbGroupPatch) apply(base OrbGroup) OrbGroup {
	out := base
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.Orbs != nil {
		out.Orbs = *p.Orbs
	}
	return out
}

func (p *MainSilhouettePatch) apply(base MainSilhouette) MainSilhouette {
	out := base
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.Fill != nil {
		out.Fill = *p.Fill
	}
	if p.OffsetX != nil {
		out.OffsetX = *p.OffsetX
	}
	if p.OffsetY != nil {
		out.OffsetY = *p.OffsetY
	}
	return out
}

func (p *SilhouetteLayerPatch) apply(base SilhouetteLayer) SilhouetteLayer {
	out := base
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.StrokeWidth != nil {
		out.StrokeWidth = *p.StrokeWidth
	}
	if p.StrokeWidthMid != nil {
		out.StrokeWidthMid = *p.StrokeWidthMid
	}
	if p.StrokeWidthEnd != nil {
		out.StrokeWidthEnd = *p.StrokeWidthEnd
	}
	if p.Feather != nil {
		out.Feather = *p.Feather
	}
	if p.FeatherMid != nil {
		out.FeatherMid = *p.FeatherMid
	}
	if p.FeatherEnd != nil {
		out.FeatherEnd = *p.FeatherEnd
	}
	if p.Scale != nil {
		out.Scale = *p.Scale
	}
	if p.Fill != nil {
		out.Fill = *p.Fill
	}
	if p.Opacity != nil {
		out.Opacity = *p.Opacity
	}
	if p.OffsetX != nil {
		out.OffsetX = *p.OffsetX
	}
	if p.OffsetY != nil {
		out.OffsetY = *p.OffsetY
	}
	return out
}

func (p *DirectionalBlurPatch) apply(base DirectionalBlur) DirectionalBlur {
	out := base
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.StartX != nil {
		out.StartX = *p.StartX
	}
	if p.StartY != nil {
		out.StartY = *p.StartY
	}
	if p.EndX != nil {
		out.EndX = *p.EndX
	}
	if p.EndY != nil {
		out.EndY = *p.EndY
	}
	if p.StartAmount != nil {
		out.StartAmount = *p.StartAmount
	}
	if p.EndAmount != nil {
		out.EndAmount = *p.EndAmount
	}
	return out
}

// Merge decodes doc as a Patch and applies it over base. An empty or
// partial document never fails the load: missing keys keep base values.
func Merge(base ControlParams, doc []byte) (ControlParams, error) {
	var p Patch
	if err := json.Unmarshal(doc, &p); err != nil {
		return base, fmt.Errorf("decode params document: %w", err)
	}
	return p.Apply(base), nil
}

// LoadFile reads a saved parameter document and merges it over Defaults,
// so documents written by older versions still produce a complete
// configuration.
func LoadFile(path string) (ControlParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), fmt.Errorf("read params file: %w", err)
	}
	return Merge(Defaults(), data)
}

// SaveFile writes the full parameter document as indented JSON.
func SaveFile(path string, p ControlParams) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
