package services

import (
	"strings"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
)

// fieldAliases maps each standard field to its lowercase alias substrings,
// in match priority order. Built once at init and read-only afterwards.
var fieldAliases = map[entities.StandardField][]string{
	entities.FieldPatientID: {
		"paciente_id", "id_paciente", "patient_id", "paciente", "patient", "cedula", "historia", "nhc",
	},
	entities.FieldNoteDate: {
		"fecha_nota", "fecha", "date", "fecha_consulta", "fecha_atencion", "fecha_visita",
	},
	entities.FieldClinician: {
		"medico", "doctor", "clinico", "profesional", "physician", "clinician", "tratante",
	},
	entities.FieldSpecialty: {
		"especialidad", "specialty", "servicio", "departamento",
	},
	entities.FieldVisitType: {
		"tipo_visita", "tipo_consulta", "visit_type", "modalidad", "tipo",
	},
	entities.FieldContent: {
		"contenido", "nota", "note", "texto", "observaciones", "descripcion", "content", "evolucion",
	},
	entities.FieldDiagnoses: {
		"diagnosticos", "diagnostico", "diagnosis", "cie10",
	},
	entities.FieldMedications: {
		"medicamentos", "medicamento", "medication", "farmacos", "tratamiento",
	},
}

// ColumnMapper binds arbitrary header text onto the fixed note schema
type ColumnMapper struct{}

// NewColumnMapper creates a new column mapper
func NewColumnMapper() *ColumnMapper {
	return &ColumnMapper{}
}

// Map computes the per-file column mapping from the header row. For each
// standard field, headers are scanned in file order; a header matches when
// its lowercased trimmed form contains an alias, or an alias contains the
// header. The first matching header wins and the field is not reconsidered.
// Unmatched fields stay unbound and are treated as absent downstream.
func (m *ColumnMapper) Map(headers []string) entities.ColumnMapping {
	mapping := make(entities.ColumnMapping, len(entities.StandardFields))

	for _, field := range entities.StandardFields {
		aliases := fieldAliases[field]

	headerScan:
		for _, header := range headers {
			normalized := strings.ToLower(strings.TrimSpace(header))
			if normalized == "" {
				continue
			}
			for _, alias := range aliases {
				if strings.Contains(normalized, alias) || strings.Contains(alias, normalized) {
					mapping[field] = header
					break headerScan
				}
			}
		}
	}

	return mapping
}
