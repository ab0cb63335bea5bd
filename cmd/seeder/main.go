package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/feria"
	"github.com/poiesic/feria/core"
	"github.com/poiesic/feria/listing"
)

// Canned demo corpus. Each line is
// title|description|price|categories|condition|locality|seller|contact
var listings = []string{
	"Bicicleta rodado 26|Bicicleta de paseo con canasto, poco uso|85000|Deportes,Vehículos|Usado|Rosario|María|maria@example.com",
	"Bicicleta de carrera|Cuadro de aluminio, cambios Shimano|210000|Deportes|Usado|Rosario|María|maria@example.com",
	"Heladera con freezer|Heladera Gafa 300 litros, funciona perfecto|150000|Hogar,Electrodomésticos|Usado|Rafaela|Juan|juan@example.com",
	"Heladera no frost|Sin uso, en caja cerrada|480000|Hogar,Electrodomésticos|Nuevo|Rosario|Electro Litoral|ventas@electrolitoral.com",
	"Lavarropas automático|Drean Next 8 kg, service reciente|120000|Hogar,Electrodomésticos|Usado|Rafaela|Juan|juan@example.com",
	"Mesa de algarrobo|Mesa de comedor para seis personas|95000|Hogar,Muebles|Usado|Villa María|Pedro|pedro@example.com",
	"Juego de sillas|Seis sillas tapizadas, muy buen estado|60000|Hogar,Muebles|Usado|Villa María|Pedro|pedro@example.com",
	"Sillón de living|Sillón de tres cuerpos, tela gris|110000|Hogar,Muebles|Usado|Rosario|María|maria@example.com",
	"Monitor 24 pulgadas|Monitor Samsung full HD, HDMI|90000|Electrónica,Computación|Usado|Rosario|Tecno Rosario|info@tecnorosario.com",
	"Notebook Lenovo|Core i5, 8 GB RAM, SSD 256|520000|Electrónica,Computación|Usado|Rosario|Tecno Rosario|info@tecnorosario.com",
	"Teclado mecánico|Switches red, retroiluminado, en caja|75000|Electrónica,Computación|Nuevo|Rosario|Tecno Rosario|info@tecnorosario.com",
	"Guitarra criolla|Guitarra de estudio con funda|65000|Música|Usado|Rafaela|Lucía|lucia@example.com",
	"Amplificador de guitarra|15 watts, ideal para practicar|55000|Música,Electrónica|Usado|Rafaela|Lucía|lucia@example.com",
	"Cochecito de bebé|Cochecito plegable con cubrepiés|48000|Bebés|Usado|Villa María|Ana|ana@example.com",
	"Cuna funcional|Cuna que se convierte en cama infantil|130000|Bebés,Muebles|Usado|Villa María|Ana|ana@example.com",
	"Zapatillas running|Talle 42, un solo uso|70000|Deportes,Indumentaria|Usado|Rosario|Diego|diego@example.com",
	"Pelota de fútbol|Número 5, cosida a mano|25000|Deportes|Nuevo|Rosario|Diego|diego@example.com",
	"Juego de ollas|Acero inoxidable, cinco piezas|82000|Hogar,Cocina|Nuevo|Rafaela|Juan|juan@example.com",
	"Horno eléctrico|45 litros con grill y timer|98000|Hogar,Electrodomésticos|Usado|Rafaela|Juan|juan@example.com",
	"Escritorio de oficina|Escritorio con cajonera, melamina blanca|72000|Muebles,Oficina|Usado|Rosario|María|maria@example.com",
}

var (
	dbPath       = flag.String("db", "./feria_db", "path to BadgerDB database directory")
	seedFileName = flag.String("src", "", "file of seed data")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedGeo loads the demo provinces and localities and returns locality IDs
// by name.
func seedGeo(ctx context.Context, m *feria.Marketplace) (map[string]core.ID, error) {
	provinces := map[string][]string{
		"Santa Fe": {"Rosario", "Rafaela"},
		"Córdoba":  {"Villa María"},
	}

	localityIds := make(map[string]core.ID)
	for provinceName, localityNames := range provinces {
		added, err := m.GeoRepository().AddProvinces(ctx, &core.Province{Name: provinceName})
		if err != nil {
			return nil, err
		}

		for _, name := range localityNames {
			localities, err := m.GeoRepository().AddLocalities(ctx, &core.Locality{
				Name:       name,
				ProvinceId: added[0].Id,
			})
			if err != nil {
				return nil, err
			}
			localityIds[name] = localities[0].Id
		}
	}
	return localityIds, nil
}

// parseDraft parses one pipe-separated seed line.
func parseDraft(line string, localityIds map[string]core.ID) (*listing.Draft, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 8 {
		return nil, fmt.Errorf("expected 8 fields, got %d: %q", len(fields), line)
	}

	price, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, fmt.Errorf("bad price in %q: %w", line, err)
	}

	condition, err := core.ParseCondition(fields[4])
	if err != nil {
		return nil, err
	}

	return &listing.Draft{
		Title:         fields[0],
		Description:   fields[1],
		Price:         price,
		Categories:    strings.Split(fields[3], ","),
		Condition:     condition,
		LocalityId:    localityIds[fields[5]],
		SellerName:    fields[6],
		SellerContact: fields[7],
	}, nil
}

func main() {
	m, err := feria.NewMarketplace(*dbPath)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	ctx := context.Background()

	localityIds, err := seedGeo(ctx, m)
	if err != nil {
		panic(err)
	}

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(listings)
	}

	var drafts []*listing.Draft
	for line := range source {
		if strings.TrimSpace(line) == "" {
			continue
		}
		draft, err := parseDraft(line, localityIds)
		if err != nil {
			panic(err)
		}
		drafts = append(drafts, draft)
	}

	service, err := m.NewListingService()
	if err != nil {
		panic(err)
	}

	items, err := service.SeedItems(ctx, drafts)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded marketplace", "items", len(items), "indexed", m.Index().Len())
}
