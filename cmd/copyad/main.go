package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/copyadhq/copyad/internal/migration"
	"github.com/copyadhq/copyad/internal/observability"
	"github.com/copyadhq/copyad/internal/server"
	"github.com/copyadhq/copyad/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
