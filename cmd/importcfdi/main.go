// importcfdi importa en lote los CFDI XML de un directorio para un cliente.
//
// Uso: go run ./cmd/importcfdi -cliente <id> -dir <directorio>
// Requiere la misma configuración de base de datos que el servidor (env vars).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kontia/kontia-api/internal/domain"
	domaincfdi "github.com/kontia/kontia-api/internal/domain/cfdi"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
	"github.com/kontia/kontia-api/internal/infrastructure/postgres"
	"github.com/kontia/kontia-api/pkg/config"
)

// importarXML parsea un comprobante y lo persiste con identidad y marcas de
// tiempo nuevas. Devuelve domain.ErrDuplicate si el UUID ya existe para el
// cliente.
func importarXML(parser *domaincfdi.Parser, repo repository.CFDIRepository, cliente *entity.Cliente, data []byte) (*entity.CFDI, error) {
	c, err := parser.Parse(data, cliente.ID, cliente.RFC)
	if err != nil {
		return nil, err
	}
	if prev, _ := repo.GetByUUID(cliente.ID, c.UUID); prev != nil {
		return nil, domain.ErrDuplicate
	}
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if err := repo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	clienteID := flag.String("cliente", "", "ID del cliente dueño de los comprobantes")
	dir := flag.String("dir", ".", "Directorio con los archivos XML")
	flag.Parse()

	if *clienteID == "" {
		fmt.Fprintln(os.Stderr, "falta -cliente")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	clienteRepo := postgres.NewClienteRepository(pool)
	cfdiRepo := postgres.NewCFDIRepository(pool)

	cliente, err := clienteRepo.GetByID(*clienteID)
	if err != nil || cliente == nil {
		fmt.Fprintf(os.Stderr, "cliente %s no encontrado\n", *clienteID)
		os.Exit(1)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leer directorio: %v\n", err)
		os.Exit(1)
	}

	parser := domaincfdi.NewParser()
	var importados, duplicados, fallidos int
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(*dir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Name(), err)
			fallidos++
			continue
		}
		if _, err := importarXML(parser, cfdiRepo, cliente, data); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				duplicados++
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Name(), err)
			fallidos++
			continue
		}
		importados++
	}

	fmt.Printf("importados: %d, duplicados: %d, fallidos: %d\n", importados, duplicados, fallidos)
	if fallidos > 0 {
		os.Exit(1)
	}
}
