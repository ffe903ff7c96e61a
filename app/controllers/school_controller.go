package controllers

import (
	"strings"

	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

type SchoolController struct {
	schools  *services.SchoolService
	importer *services.GeoImporter

	Show, Store, Update, Destroy ctx.HandlerFunc
}

func NewSchoolController(s *services.SchoolService, importer *services.GeoImporter) *SchoolController {
	return &SchoolController{
		schools:  s,
		importer: importer,
		Show:     show(s.Get),
		Store:    store(s.Create),
		Update:   update(s.Update),
		Destroy:  destroy(s.Delete),
	}
}

func (sc *SchoolController) Index(c *ctx.Context) {
	out, page, err := sc.schools.List(c.Context(), repositories.SchoolFilter{
		CountyID:   c.QueryUint("countyId"),
		LocalityID: c.QueryUint("localityId"),
		Search:     c.Query("q"),
	}, c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(out, page)
}

func (sc *SchoolController) Counties(c *ctx.Context) {
	out, err := sc.schools.Counties(c.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

func (sc *SchoolController) Localities(c *ctx.Context) {
	out, err := sc.schools.Localities(c.Context(), c.QueryUint("countyId"), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}

// Import POST /api/admin/schools/import pulls one county from OpenStreetMap.
func (sc *SchoolController) Import(c *ctx.Context) {
	var in services.ImportInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := sc.importer.Import(c.Context(), strings.ToUpper(in.Country), in.CountyOSMID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}
