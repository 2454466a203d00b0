package routes

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"churrasapp/models"
)

// Every response carries the same envelope: {data, error, meta} with a
// timestamp always present in meta.

func respond(c *gin.Context, status int, data any, errMsg string, meta gin.H) {
	if meta == nil {
		meta = gin.H{}
	}
	meta["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	var e any
	if errMsg != "" {
		e = errMsg
	}
	c.JSON(status, gin.H{"data": data, "error": e, "meta": meta})
}

func respondOK(c *gin.Context, status int, data any, meta gin.H) {
	respond(c, status, data, "", meta)
}

func respondError(c *gin.Context, status int, errMsg string, meta gin.H) {
	respond(c, status, nil, errMsg, meta)
}

// respondRepoError maps repository failures: field validation becomes a
// 400 with the per-field list, anything else a generic 500. The raw
// error is logged server-side only.
func (d *deps) respondRepoError(c *gin.Context, err error, action string) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(c, 400, "Dados inválidos", gin.H{"validationErrors": verrs})
		return
	}
	d.log.Error().Err(err).Str("path", c.FullPath()).Msg(action)
	respondError(c, 500, "Erro interno do servidor", nil)
}
