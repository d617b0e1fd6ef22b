package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type department struct {
	id         int64
	name, code string
}

type warehouse struct {
	id   int64
	name string
}

type product struct {
	id                     int64
	sku, name, unit, descr string
}

type employee struct {
	userID       string
	departmentID int64
}

type masterData struct {
	departments []department
	warehouses  []warehouse
	products    []product
	employees   []employee
}

// decoderFor envuelve r según la codificación del archivo; las hojas de cálculo
// en español suelen exportar en Latin-1 o Windows-1252.
func decoderFor(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "-", "")) {
	case "", "utf8":
		return r, nil
	case "latin1", "iso88591":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

// readRows lee el CSV sin la fila de encabezado y con campos recortados.
func readRows(r io.Reader, encoding string, sep rune) ([][]string, error) {
	dec, err := decoderFor(r, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dec)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	out := rows[:0]
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseID(s string, line int) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("fila %d: id inválido %q", line, s)
	}
	return id, nil
}

func parseDepartments(rows [][]string) ([]department, error) {
	out := make([]department, 0, len(rows))
	for i, row := range rows {
		id, err := parseID(field(row, 0), i+2)
		if err != nil {
			return nil, err
		}
		if field(row, 1) == "" {
			return nil, fmt.Errorf("fila %d: nombre vacío", i+2)
		}
		out = append(out, department{id: id, name: field(row, 1), code: field(row, 2)})
	}
	return out, nil
}

func parseWarehouses(rows [][]string) ([]warehouse, error) {
	out := make([]warehouse, 0, len(rows))
	for i, row := range rows {
		id, err := parseID(field(row, 0), i+2)
		if err != nil {
			return nil, err
		}
		if field(row, 1) == "" {
			return nil, fmt.Errorf("fila %d: nombre vacío", i+2)
		}
		out = append(out, warehouse{id: id, name: field(row, 1)})
	}
	return out, nil
}

func parseProducts(rows [][]string) ([]product, error) {
	out := make([]product, 0, len(rows))
	seen := make(map[string]bool)
	for i, row := range rows {
		id, err := parseID(field(row, 0), i+2)
		if err != nil {
			return nil, err
		}
		sku := field(row, 1)
		if sku == "" || field(row, 2) == "" {
			return nil, fmt.Errorf("fila %d: sku y nombre son obligatorios", i+2)
		}
		if seen[sku] {
			return nil, fmt.Errorf("fila %d: sku repetido %s", i+2, sku)
		}
		seen[sku] = true
		out = append(out, product{id: id, sku: sku, name: field(row, 2), unit: field(row, 3), descr: field(row, 4)})
	}
	return out, nil
}

func parseEmployees(rows [][]string) ([]employee, error) {
	out := make([]employee, 0, len(rows))
	for i, row := range rows {
		if field(row, 0) == "" {
			return nil, fmt.Errorf("fila %d: usuario vacío", i+2)
		}
		dept, err := parseID(field(row, 1), i+2)
		if err != nil {
			return nil, err
		}
		out = append(out, employee{userID: field(row, 0), departmentID: dept})
	}
	return out, nil
}

// loadDir lee los CSV presentes en dir.
func loadDir(dir, encoding string, sep rune) (*masterData, error) {
	var data masterData
	load := func(name string, parse func([][]string) error) error {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		defer f.Close()
		rows, err := readRows(f, encoding, sep)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := parse(rows); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	steps := []struct {
		name  string
		parse func([][]string) error
	}{
		{"departamentos.csv", func(r [][]string) (err error) { data.departments, err = parseDepartments(r); return }},
		{"bodegas.csv", func(r [][]string) (err error) { data.warehouses, err = parseWarehouses(r); return }},
		{"productos.csv", func(r [][]string) (err error) { data.products, err = parseProducts(r); return }},
		{"empleados.csv", func(r [][]string) (err error) { data.employees, err = parseEmployees(r); return }},
	}
	for _, s := range steps {
		if err := load(s.name, s.parse); err != nil {
			return nil, err
		}
	}
	return &data, nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// writeSQL emite INSERT idempotentes (ON CONFLICT DO UPDATE) en orden de dependencias
// y ajusta las secuencias BIGSERIAL al mayor id cargado.
func writeSQL(w io.Writer, d *masterData) error {
	var b strings.Builder
	b.WriteString("-- Datos maestros del almacén\n-- Generado por cmd/seed\n\nBEGIN;\n\n")

	if len(d.departments) > 0 {
		sort.Slice(d.departments, func(i, j int) bool { return d.departments[i].id < d.departments[j].id })
		b.WriteString("INSERT INTO departments (id, name, code) VALUES\n")
		for i, x := range d.departments {
			fmt.Fprintf(&b, "  (%d, '%s', '%s')%s\n", x.id, escapeSQL(x.name), escapeSQL(x.code), sep(i, len(d.departments)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, code = EXCLUDED.code;\n\n")
	}
	if len(d.warehouses) > 0 {
		sort.Slice(d.warehouses, func(i, j int) bool { return d.warehouses[i].id < d.warehouses[j].id })
		b.WriteString("INSERT INTO warehouses (id, name) VALUES\n")
		for i, x := range d.warehouses {
			fmt.Fprintf(&b, "  (%d, '%s')%s\n", x.id, escapeSQL(x.name), sep(i, len(d.warehouses)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n\n")
	}
	if len(d.products) > 0 {
		sort.Slice(d.products, func(i, j int) bool { return d.products[i].id < d.products[j].id })
		b.WriteString("INSERT INTO products (id, sku, name, unit, description) VALUES\n")
		for i, x := range d.products {
			fmt.Fprintf(&b, "  (%d, '%s', '%s', '%s', '%s')%s\n",
				x.id, escapeSQL(x.sku), escapeSQL(x.name), escapeSQL(x.unit), escapeSQL(x.descr), sep(i, len(d.products)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name,\n")
		b.WriteString("  unit = EXCLUDED.unit, description = EXCLUDED.description;\n\n")
	}
	if len(d.employees) > 0 {
		b.WriteString("INSERT INTO employees (user_id, department_id) VALUES\n")
		for i, x := range d.employees {
			fmt.Fprintf(&b, "  ('%s', %d)%s\n", escapeSQL(x.userID), x.departmentID, sep(i, len(d.employees)))
		}
		b.WriteString("ON CONFLICT (user_id) DO UPDATE SET department_id = EXCLUDED.department_id;\n\n")
	}

	for _, t := range []string{"departments", "warehouses", "products"} {
		fmt.Fprintf(&b, "SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 1));\n", t, t)
	}
	b.WriteString("\nCOMMIT;\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}
