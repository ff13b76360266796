package api

import (
	"github.com/gofiber/fiber/v2"

	"vecrag/loader/seed"
)

type FileResponse struct {
	Added   []int64  `json:"added"`
	Skipped []string `json:"skipped"`
}

// HandleFile ingests an uploaded text file, one document per line. Lines
// that fail to embed or insert are reported back and skipped.
func (h *RequestHandler) HandleFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadFile()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	docs, err := seed.ReadSeed(file)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return NewValidationError(map[string]string{"file": "no documents found"})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	resp := FileResponse{Added: []int64{}, Skipped: []string{}}
	for _, text := range docs {
		id, err := h.addDocument(c, text)
		if err != nil {
			resp.Skipped = append(resp.Skipped, text)
			continue
		}
		resp.Added = append(resp.Added, id)
	}

	status := fiber.StatusCreated
	if len(resp.Added) == 0 {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(resp)
}
