package http

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
)

// statusByKind status HTTP del BFF para cada clase de error.
var statusByKind = map[domain.Kind]int{
	domain.KindValidation:   fiber.StatusBadRequest,
	domain.KindBusiness:     fiber.StatusUnprocessableEntity,
	domain.KindUnauthorized: fiber.StatusUnauthorized,
	domain.KindNotFound:     fiber.StatusNotFound,
	domain.KindConflict:     fiber.StatusConflict,
	domain.KindNetwork:      fiber.StatusBadGateway,
	domain.KindServer:       fiber.StatusBadGateway,
}

// writeError traduce un error de los casos de uso a la respuesta JSON.
func writeError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	status, ok := statusByKind[de.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if de.Kind == domain.KindUnauthorized && de.Status == fiber.StatusForbidden {
		status = fiber.StatusForbidden
	}
	code := de.Code
	if code == "" {
		code = strings.ToUpper(string(de.Kind))
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: de.Message, Fields: de.Fields})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
}

// paramID lee un id numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
}

// sendBlob responde un archivo descargado del backend como adjunto.
func sendBlob(c *fiber.Ctx, b *dto.Blob) error {
	c.Attachment(b.Name)
	if b.ContentType != "" {
		c.Set(fiber.HeaderContentType, b.ContentType)
	}
	return c.Send(b.Data)
}

// importFile reenvía el archivo multipart "file" al caso de uso de importación.
func importFile(c *fiber.Ctx, fn func(ctx context.Context, name string, r io.Reader) (*dto.ImportResult, error)) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()
	out, err := fn(c.UserContext(), fh.Filename, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
