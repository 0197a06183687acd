package main

import "ecofix/backend/go/internal/models"

func logErr(err error) models.ErrorInfo {
	return models.NewErrorInfo(err, "startup", 0)
}
