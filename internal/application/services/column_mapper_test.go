package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
)

func TestMapBindsSpanishHeaders(t *testing.T) {
	mapper := NewColumnMapper()

	mapping := mapper.Map([]string{"Paciente_ID", "Fecha", "Medico", "Especialidad", "Contenido"})

	assert.Equal(t, "Paciente_ID", mapping.Header(entities.FieldPatientID))
	assert.Equal(t, "Fecha", mapping.Header(entities.FieldNoteDate))
	assert.Equal(t, "Medico", mapping.Header(entities.FieldClinician))
	assert.Equal(t, "Especialidad", mapping.Header(entities.FieldSpecialty))
	assert.Equal(t, "Contenido", mapping.Header(entities.FieldContent))
}

func TestMapIsCaseInsensitive(t *testing.T) {
	mapper := NewColumnMapper()

	mapping := mapper.Map([]string{"FECHA", "PACIENTE_ID"})

	assert.Equal(t, "FECHA", mapping.Header(entities.FieldNoteDate))
	assert.Equal(t, "PACIENTE_ID", mapping.Header(entities.FieldPatientID))
}

func TestMapMatchesSubstringsBothWays(t *testing.T) {
	mapper := NewColumnMapper()

	// Header contains alias, and header contained by alias
	mapping := mapper.Map([]string{"Fecha de Consulta", "Pacient"})

	assert.Equal(t, "Fecha de Consulta", mapping.Header(entities.FieldNoteDate))
	assert.Equal(t, "Pacient", mapping.Header(entities.FieldPatientID))
}

func TestMapEnglishHeaders(t *testing.T) {
	mapper := NewColumnMapper()

	mapping := mapper.Map([]string{"Patient_ID", "Date", "Clinician", "Content", "Diagnosis", "Medication"})

	assert.Equal(t, "Patient_ID", mapping.Header(entities.FieldPatientID))
	assert.Equal(t, "Date", mapping.Header(entities.FieldNoteDate))
	assert.Equal(t, "Clinician", mapping.Header(entities.FieldClinician))
	assert.Equal(t, "Content", mapping.Header(entities.FieldContent))
	assert.Equal(t, "Diagnosis", mapping.Header(entities.FieldDiagnoses))
	assert.Equal(t, "Medication", mapping.Header(entities.FieldMedications))
}

func TestMapFirstMatchingHeaderWins(t *testing.T) {
	mapper := NewColumnMapper()

	mapping := mapper.Map([]string{"Fecha_Nota", "Fecha_Consulta"})

	assert.Equal(t, "Fecha_Nota", mapping.Header(entities.FieldNoteDate))
}

func TestMapUnmatchedFieldsStayUnbound(t *testing.T) {
	mapper := NewColumnMapper()

	mapping := mapper.Map([]string{"Columna_Rara", "Otra"})

	for _, field := range entities.StandardFields {
		assert.Empty(t, mapping.Header(field))
	}
}

func TestMapDiagnosesHeaderDoesNotBindDate(t *testing.T) {
	mapper := NewColumnMapper()

	mapping := mapper.Map([]string{"Diagnosticos", "Fecha"})

	assert.Equal(t, "Fecha", mapping.Header(entities.FieldNoteDate))
	assert.Equal(t, "Diagnosticos", mapping.Header(entities.FieldDiagnoses))
}
