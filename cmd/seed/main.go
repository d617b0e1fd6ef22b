// seed genera el script SQL de datos maestros (departamentos, empleados, bodegas y productos)
// a partir de CSV exportados de hoja de cálculo, y opcionalmente emite un JWT de desarrollo.
//
// Uso:
//
//	go run ./cmd/seed -dir ./datos [-encoding latin1] [-sep ';'] [-out seed.sql]
//	go run ./cmd/seed -token u-1 -roles Storekeeper,Admin
//
// Archivos esperados en -dir (los ausentes se omiten):
//
//	departamentos.csv  id;nombre;codigo
//	bodegas.csv        id;nombre
//	productos.csv      id;sku;nombre;unidad;descripcion
//	empleados.csv      usuario;departamento_id
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/almacen-api/pkg/config"
	pkgjwt "github.com/jhoicas/almacen-api/pkg/jwt"
)

func main() {
	dir := flag.String("dir", ".", "directorio con los CSV")
	encoding := flag.String("encoding", "utf8", "codificación de los CSV: utf8 | latin1 | windows1252")
	sep := flag.String("sep", ";", "separador de columnas")
	outPath := flag.String("out", "", "archivo de salida (por defecto stdout)")
	token := flag.String("token", "", "emite un JWT de desarrollo para este usuario y termina")
	roles := flag.String("roles", "", "roles del JWT separados por coma")
	flag.Parse()

	if *token != "" {
		if err := printToken(os.Stdout, *token, *roles); err != nil {
			fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(*sep) != 1 {
		fmt.Fprintln(os.Stderr, "El separador debe ser un solo carácter")
		os.Exit(1)
	}

	data, err := loadDir(*dir, *encoding, rune((*sep)[0]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(filepath.Clean(*outPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := writeSQL(out, data); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Generado: %d departamentos, %d empleados, %d bodegas, %d productos\n",
		len(data.departments), len(data.employees), len(data.warehouses), len(data.products))
}

// printToken firma con JWT_SECRET/JWT_ISSUER de la configuración, igual que valida la API.
func printToken(w io.Writer, userID, roles string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET vacío")
	}
	var list []string
	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			list = append(list, r)
		}
	}
	tok, err := pkgjwt.Generate(cfg.JWT.Secret, userID, list, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}
