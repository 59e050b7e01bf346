// Package handlers holds the bodies of the chat commands. Every file registers
// its commands from init; RegisterAll hands them to a registry.
package handlers

import (
	"CoinBot/core/commands"
)

const (
	categoryMisc    = "misc"
	categoryEconomy = "economy"
	categoryGames   = "games"
	categoryShop    = "shop"
	categoryBank    = "bank"
	categoryStocks  = "stocks"
	categoryAdmin   = "admin"
)

var manifests []commands.Manifest

func register(m ...commands.Manifest) {
	manifests = append(manifests, m...)
}

// RegisterAll adds every command of this package to registry.
func RegisterAll(registry *commands.Registry) {
	for _, m := range manifests {
		registry.Register(m)
	}
}
