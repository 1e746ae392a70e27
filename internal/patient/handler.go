package patient

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/models"
)

type ImplantResponse struct {
	Diameter string `json:"diameter"`
	Length   string `json:"length"`
	Qty      int    `json:"qty"`
}

type PatientResponse struct {
	ID        uint              `json:"id"`
	Branch    string            `json:"branch"`
	Name      string            `json:"name"`
	Implants  []ImplantResponse `json:"implants"`
	CreatedAt string            `json:"created_at"`
}

type SavePatientRequest struct {
	Branch string      `json:"branch"`
	Name   string      `json:"name"`
	Lines  []LineInput `json:"lines"`
}

func toResponse(p *models.Patient) PatientResponse {
	resp := PatientResponse{
		ID:        p.ID,
		Branch:    p.Branch,
		Name:      p.Name,
		Implants:  make([]ImplantResponse, 0, len(p.Implants)),
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, imp := range p.Implants {
		resp.Implants = append(resp.Implants, ImplantResponse{
			Diameter: config.FormatSize(imp.Diameter),
			Length:   config.FormatSize(imp.Length),
			Qty:      imp.Qty,
		})
	}
	return resp
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz hasta ID")
	}
	return uint(id), nil
}

// GET /api/patients?branch=
func ListHandler(reg *Registry, catalog config.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		branch, err := catalog.ResolveBranch(c.Query("branch"))
		if err != nil {
			return err
		}

		patients, err := reg.List(c.UserContext(), branch)
		if err != nil {
			return err
		}

		resp := make([]PatientResponse, 0, len(patients))
		for i := range patients {
			resp = append(resp, toResponse(&patients[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/patients/:id?branch=
func GetHandler(reg *Registry, catalog config.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		branch, err := catalog.ResolveBranch(c.Query("branch"))
		if err != nil {
			return err
		}
		p, err := reg.Get(c.UserContext(), id, branch)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(p))
	}
}

// POST /api/patients
func CreateHandler(reg *Registry, catalog config.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SavePatientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branch, err := catalog.ResolveBranch(body.Branch)
		if err != nil {
			return err
		}

		p, err := reg.Create(c.UserContext(), branch, body.Name, ParseLines(body.Lines))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(p))
	}
}

// PUT /api/patients/:id
func UpdateHandler(reg *Registry, catalog config.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		var body SavePatientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		branch, err := catalog.ResolveBranch(body.Branch)
		if err != nil {
			return err
		}

		p, err := reg.Update(c.UserContext(), id, branch, body.Name, ParseLines(body.Lines))
		if err != nil {
			return err
		}
		return c.JSON(toResponse(p))
	}
}

// DELETE /api/patients/:id?branch=
func DeleteHandler(reg *Registry, catalog config.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}

		branch, err := catalog.ResolveBranch(c.Query("branch"))
		if err != nil {
			return err
		}

		if err := reg.Delete(c.UserContext(), id, branch); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Hasta silindi, implantlar stoka geri eklendi",
		})
	}
}
