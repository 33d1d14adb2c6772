package web

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"go-portmap/internal/export"
	"go-portmap/internal/index"
	"go-portmap/internal/inventory"
	"go-portmap/internal/models"
	"go-portmap/internal/resolver"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	inv *inventory.Engine
	log *zap.Logger
}

// NewEngine loads the dashboard templates from dir.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("mod", func(a, b int) int { return a % b })
	return engine
}

// SetupRoutes registers the dashboard, the JSON API and /metrics. A nil
// gatherer serves the default prometheus registry.
func SetupRoutes(app *fiber.App, inv *inventory.Engine, log *zap.Logger, gatherer prometheus.Gatherer) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{inv: inv, log: log}

	app.Use(h.logRequests)

	app.Get("/", h.dashboard)
	if gatherer == nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	} else {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	api.Get("/document", h.exportDocument)
	api.Post("/document/import", h.importDocument)
	api.Post("/document/reset", h.resetDocument)
	api.Get("/activity", h.activity)

	api.Get("/floors", h.listFloors)
	api.Post("/floors", h.addFloor)
	api.Put("/floors/:id", h.renameFloor)
	api.Delete("/floors/:id", h.deleteCascading(inventory.KindFloors))
	api.Get("/floors/:id/wall-ports", h.floorWallPorts)
	api.Post("/floors/:id/wall-ports", h.addWallPort)
	api.Post("/floors/:id/wall-ports/batch", h.batchAddWallPorts)
	api.Get("/floors/:id/closet", h.closetLayout)
	api.Put("/floors/:id/closet", h.setClosetLayout)

	api.Put("/wall-ports/:id", h.renameWallPort)
	api.Put("/wall-ports/:id/pin", h.pinWallPort)
	api.Delete("/wall-ports/:id", h.deleteCascading(inventory.KindWallPorts))

	api.Get("/connections", h.listConnections)
	api.Put("/connections", h.upsertConnection)
	api.Post("/connections/bulk", h.bulkEdit)
	api.Delete("/connections/:wallPortId", h.disconnect)

	api.Get("/switches", h.listSwitches)
	api.Post("/switches", h.addSwitch)
	api.Put("/switches/:id", h.updateSwitch)
	api.Delete("/switches/:id", h.deleteCascading(inventory.KindSwitches))
	api.Put("/switches/:id/pin", h.pinSwitch)
	api.Get("/switches/:id/next-port", h.nextPort)
	api.Get("/switches/:id/layout", h.switchLayout)
	api.Put("/switches/:id/layout", h.setSwitchLayout)

	api.Post("/users", h.addUser)
	api.Put("/users/:id", h.renameUser)
	api.Delete("/users/:id", h.deleteSimple(inventory.KindUsers))

	api.Post("/categories", h.addCategory)
	api.Put("/categories/:id", h.updateCategory)
	api.Delete("/categories/:id", h.deleteSimple(inventory.KindSwitchCategories))

	api.Post("/layout-templates", h.addLayoutTemplate)
	api.Put("/layout-templates/:id", h.updateLayoutTemplate)
	api.Delete("/layout-templates/:id", h.deleteSimple(inventory.KindLayoutTemplates))

	api.Put("/vlan-colors/:vlanId", h.upsertVlanColor)
	api.Delete("/vlan-colors/:vlanId", h.deleteVlanColor)

	api.Put("/columns", h.setColumns)
	api.Post("/columns", h.addColumn)

	api.Get("/export/wall-ports/:floorId", h.exportWallPorts)
	api.Get("/export/switches", h.exportSwitches)
}

func (h *Handler) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return err
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := codeOf(err)
	if code == Internal {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return respondCode(c, code, err.Error(), nil)
}

func (h *Handler) parse(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: %v", inventory.ErrInvalidInput, err)
	}
	return nil
}

func confirmed(c *fiber.Ctx) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

// Dashboard

type portCell struct {
	Port     int
	Used     bool
	WallPort string
	Vlan     string
}

type switchView struct {
	Switch   models.Switch
	Category string
	Rows     [][]portCell
	Free     int
}

func (h *Handler) dashboard(c *fiber.Ctx) error {
	s := h.inv.Snapshot()

	views := make([]switchView, 0, len(s.Doc.Switches))
	for _, sw := range s.Doc.Switches {
		v := switchView{Switch: sw, Category: s.Index.SwitchCategories[sw.CategoryID].Name}
		for _, row := range resolver.Layout(sw, resolver.ResolveTemplate(s.Index.LayoutTemplates, sw)) {
			cells := make([]portCell, 0, len(row))
			for _, p := range row {
				cell := portCell{Port: p}
				if conn, ok := s.Index.ConnectionsBySwitchPort[index.SwitchPortKey(sw.ID, p)]; ok {
					cell.Used = true
					cell.WallPort = s.Index.WallPorts[conn.WallPortID].PortNumber
					cell.Vlan = conn.Vlan
				}
				cells = append(cells, cell)
			}
			v.Rows = append(v.Rows, cells)
		}
		v.Free = sw.PortCount
		for p := 1; p <= sw.PortCount; p++ {
			if conn, ok := s.Index.ConnectionsBySwitchPort[index.SwitchPortKey(sw.ID, p)]; ok && conn.OccupiesSwitchPort() {
				v.Free--
			}
		}
		views = append(views, v)
	}

	activity := h.inv.Activity()
	if len(activity) > 20 {
		activity = activity[:20]
	}
	return c.Render("index", fiber.Map{
		"Floors":      s.Doc.Floors,
		"WallPorts":   len(s.Doc.WallPorts),
		"Connections": len(s.Doc.Connections),
		"Switches":    views,
		"Activity":    activity,
	})
}

// Document

func (h *Handler) exportDocument(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.inv.Export(&buf); err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="network-asset-manager-`+today()+`.json"`)
	c.Type("json")
	return c.Send(buf.Bytes())
}

func (h *Handler) importDocument(c *fiber.Ctx) error {
	body := c.Body()
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return h.fail(c, err)
		}
		defer f.Close()
		if err := h.inv.Import(f); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := h.inv.Import(bytes.NewReader(body)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) resetDocument(c *fiber.Ctx) error {
	if !confirmed(c) {
		return h.fail(c, ErrConfirmationRequired)
	}
	if err := h.inv.Reset(); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) activity(c *fiber.Ctx) error {
	return c.JSON(h.inv.Activity())
}

// Deletes

// deleteCascading requires ?confirm=true; without it the response carries
// the impact of the delete so the caller can ask the user.
func (h *Handler) deleteCascading(kind inventory.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !confirmed(c) {
			impact, err := h.inv.DeleteImpact(kind, id)
			if err != nil {
				return h.fail(c, err)
			}
			return respondCode(c, ConfirmationRequired, ErrConfirmationRequired.Error(), fiber.Map{"impact": impact})
		}
		impact, err := h.inv.Delete(kind, id)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"impact": impact})
	}
}

func (h *Handler) deleteSimple(kind inventory.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		impact, err := h.inv.Delete(kind, c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"impact": impact})
	}
}

// Floors and wall ports

type nameRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) listFloors(c *fiber.Ctx) error {
	return c.JSON(h.inv.Snapshot().Doc.Floors)
}

func (h *Handler) addFloor(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	f, err := h.inv.AddFloor(req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

func (h *Handler) renameFloor(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.RenameFloor(c.Params("id"), req.Name); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) floorWallPorts(c *fiber.Ctx) error {
	s := h.inv.Snapshot()
	id := c.Params("id")
	ports, ok := s.Index.WallPortsByFloor[id]
	if !ok {
		return h.fail(c, inventory.ErrNotFound)
	}

	type row struct {
		models.WallPort
		Connection *models.Connection `json:"connection,omitempty"`
	}
	out := make([]row, 0, len(ports))
	for _, p := range ports {
		r := row{WallPort: p}
		if conn, ok := s.Index.ConnectionsByWallPort[p.ID]; ok {
			r.Connection = &conn
		}
		out = append(out, r)
	}
	return c.JSON(out)
}

type wallPortRequest struct {
	PortNumber string `json:"portNumber"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Prefix     string `json:"prefix"`
	Pinned     bool   `json:"pinned"`
}

func (h *Handler) addWallPort(c *fiber.Ctx) error {
	var req wallPortRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	p, err := h.inv.AddWallPort(c.Params("id"), req.PortNumber)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) batchAddWallPorts(c *fiber.Ctx) error {
	var req wallPortRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	n, err := h.inv.BatchAddWallPorts(c.Params("id"), req.Start, req.End, req.Prefix)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": n})
}

func (h *Handler) renameWallPort(c *fiber.Ctx) error {
	var req wallPortRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.RenameWallPort(c.Params("id"), req.PortNumber); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) pinWallPort(c *fiber.Ctx) error {
	var req wallPortRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.SetWallPortPinned(c.Params("id"), req.Pinned); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) closetLayout(c *fiber.Ctx) error {
	rows, err := h.inv.ClosetLayout(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rows)
}

func (h *Handler) setClosetLayout(c *fiber.Ctx) error {
	var items []models.ClosetItem
	if err := h.parse(c, &items); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.SetClosetLayout(c.Params("id"), items); err != nil {
		return h.fail(c, err)
	}
	return h.closetLayout(c)
}

// Connections

type upsertRequest struct {
	inventory.ConnectionInput
	VirtualPort *inventory.VirtualPort `json:"virtualPort"`
}

type bulkRequest struct {
	WallPortIDs []string                  `json:"wallPortIds"`
	Updates     inventory.ConnectionInput `json:"updates"`
}

func (h *Handler) listConnections(c *fiber.Ctx) error {
	return c.JSON(h.inv.Snapshot().Doc.Connections)
}

func (h *Handler) upsertConnection(c *fiber.Ctx) error {
	var req upsertRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	conn, err := h.inv.UpsertConnection(req.ConnectionInput, req.VirtualPort)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(conn)
}

func (h *Handler) bulkEdit(c *fiber.Ctx) error {
	var req bulkRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	res, err := h.inv.BulkEdit(req.WallPortIDs, req.Updates)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) disconnect(c *fiber.Ctx) error {
	if err := h.inv.Disconnect(c.Params("wallPortId")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Switches

func (h *Handler) listSwitches(c *fiber.Ctx) error {
	return c.JSON(h.inv.Snapshot().Doc.Switches)
}

func (h *Handler) addSwitch(c *fiber.Ctx) error {
	var req inventory.SwitchFields
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	sw, err := h.inv.AddSwitch(req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sw)
}

func (h *Handler) updateSwitch(c *fiber.Ctx) error {
	var req inventory.SwitchFields
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	sw, err := h.inv.UpdateSwitch(c.Params("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sw)
}

func (h *Handler) pinSwitch(c *fiber.Ctx) error {
	var req wallPortRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.SetSwitchPinned(c.Params("id"), req.Pinned); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) nextPort(c *fiber.Ctx) error {
	port, ok, err := h.inv.NextAvailablePort(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !ok {
		return respondCode(c, NoFreePort, "", nil)
	}
	return c.JSON(fiber.Map{"port": port})
}

func (h *Handler) switchLayout(c *fiber.Ctx) error {
	rows, err := h.inv.SwitchLayout(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"rows": rows})
}

func (h *Handler) setSwitchLayout(c *fiber.Ctx) error {
	var req struct {
		TemplateID string  `json:"templateId"`
		Rows       [][]int `json:"rows"`
	}
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.SetSwitchLayout(c.Params("id"), req.TemplateID, req.Rows); err != nil {
		return h.fail(c, err)
	}
	return h.switchLayout(c)
}

// Users, categories, templates, VLAN colors, columns

func (h *Handler) addUser(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	u, err := h.inv.AddUser(req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *Handler) renameUser(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.RenameUser(c.Params("id"), req.Name); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) addCategory(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	cat, err := h.inv.AddCategory(req.Name, req.Color)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.UpdateCategory(c.Params("id"), req.Name, req.Color); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) addLayoutTemplate(c *fiber.Ctx) error {
	var req models.SwitchLayoutTemplate
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	tmpl, err := h.inv.AddLayoutTemplate(req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tmpl)
}

func (h *Handler) updateLayoutTemplate(c *fiber.Ctx) error {
	var req models.SwitchLayoutTemplate
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	req.ID = c.Params("id")
	if err := h.inv.UpdateLayoutTemplate(req); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) upsertVlanColor(c *fiber.Ctx) error {
	var req nameRequest
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.UpsertVlanColor(c.Params("vlanId"), req.Color); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) deleteVlanColor(c *fiber.Ctx) error {
	if err := h.inv.DeleteVlanColor(c.Params("vlanId")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) setColumns(c *fiber.Ctx) error {
	var cols []models.Column
	if err := h.parse(c, &cols); err != nil {
		return h.fail(c, err)
	}
	if err := h.inv.SetColumns(cols); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) addColumn(c *fiber.Ctx) error {
	var req struct {
		Label string `json:"label"`
	}
	if err := h.parse(c, &req); err != nil {
		return h.fail(c, err)
	}
	col, err := h.inv.AddCustomColumn(req.Label)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(col)
}

// Exports

func today() string { return time.Now().Format("2006-01-02") }

func (h *Handler) sendTable(c *fiber.Ctx, t export.Table, filename, sheet string) error {
	var buf bytes.Buffer
	switch c.Query("format", "csv") {
	case "csv":
		if err := export.WriteCSV(&buf, t); err != nil {
			return h.fail(c, err)
		}
		c.Type("csv")
		filename += ".csv"
	case "xlsx":
		if err := export.WriteXLSX(&buf, t, sheet); err != nil {
			return h.fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		filename += ".xlsx"
	default:
		return respondCode(c, InvalidRequest, "format must be csv or xlsx", nil)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

func (h *Handler) exportWallPorts(c *fiber.Ctx) error {
	s := h.inv.Snapshot()
	t, err := export.WallPortRows(s, c.Params("floorId"))
	if err != nil {
		return h.fail(c, err)
	}
	name := export.WallPortFilename(s.Index.Floors[c.Params("floorId")].Name, today())
	return h.sendTable(c, t, name, "Wall Ports")
}

func (h *Handler) exportSwitches(c *fiber.Ctx) error {
	return h.sendTable(c, export.SwitchRows(h.inv.Snapshot()), export.SwitchFilename(today()), "Switches")
}
