package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Erros base da análise
var (
	ErrDataLoad         = errors.New("data load error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrRender           = errors.New("render error")
	ErrEval             = errors.New("evaluation error")
	ErrRunNotFound      = errors.New("analysis run not found")
)

// DataLoadError indica que o dataset não pôde ser lido ou não tem as colunas obrigatórias
type DataLoadError struct {
	Path           string   // Origem do dataset
	MissingColumns []string // Colunas obrigatórias ausentes
	Err            error    // Erro de leitura subjacente
}

func (e *DataLoadError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("%s: %s: missing required columns: %s",
			ErrDataLoad, e.Path, strings.Join(e.MissingColumns, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", ErrDataLoad, e.Path, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", ErrDataLoad, e.Path)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func (e *DataLoadError) Is(target error) bool {
	return target == ErrDataLoad
}

func NewMissingColumnsError(path string, missing []string) *DataLoadError {
	return &DataLoadError{Path: path, MissingColumns: missing}
}

func NewReadError(path string, err error) *DataLoadError {
	return &DataLoadError{Path: path, Err: err}
}

// InsufficientDataError indica que uma chave não pôde ser calculada
type InsufficientDataError struct {
	Key       string // Chave omitida do mapeamento
	Dimension string // Coluna agrupada, quando aplicável
	Reason    string
}

func (e *InsufficientDataError) Error() string {
	if e.Dimension != "" {
		return fmt.Sprintf("%s: %s (%s): %s", ErrInsufficientData, e.Key, e.Dimension, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInsufficientData, e.Key, e.Reason)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// RenderError indica falha ao produzir o relatório
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	if e.Err == nil {
		return ErrRender.Error()
	}
	return fmt.Sprintf("%s: %s", ErrRender, e.Err.Error())
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// EvalError indica falha ao avaliar os insights
type EvalError struct {
	Err error
}

func (e *EvalError) Error() string {
	if e.Err == nil {
		return ErrEval.Error()
	}
	return fmt.Sprintf("%s: %s", ErrEval, e.Err.Error())
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func (e *EvalError) Is(target error) bool {
	return target == ErrEval
}

// SplitErrors desfaz um errors.Join, retornando os erros individuais
func SplitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, inner := range joined.Unwrap() {
			out = append(out, SplitErrors(inner)...)
		}
		return out
	}
	return []error{err}
}
