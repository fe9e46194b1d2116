package api

import (
	"github.com/fical/fical/app/calendar"
	"github.com/fical/fical/app/shortlink"
)

type Handler struct {
	processor  *calendar.Processor
	shortLinks *shortlink.Service
	presets    *calendar.PresetCache
}

func NewHandler(processor *calendar.Processor, shortLinks *shortlink.Service,
	presets *calendar.PresetCache) *Handler {
	return &Handler{
		processor:  processor,
		shortLinks: shortLinks,
		presets:    presets,
	}
}
