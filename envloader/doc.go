// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package envloader carrega variáveis de ambiente para campos de uma struct
// usando as tags `env`, `envDefault` e `envRequired`.
//
// Tipos suportados: string, inteiros, uint, bool, float, time.Duration e
// []string (separado por vírgula). Structs aninhadas e ponteiros para struct
// são processados recursivamente.
//
// Exemplo:
//
//	type Env struct {
//		ConfigPath string        `env:"CONFIG_FILE_PATH" envRequired:"true"`
//		Port       int           `env:"PORT" envDefault:"8080"`
//		Timeout    time.Duration `env:"RUN_TIMEOUT" envDefault:"5m"`
//		Sinks      []string      `env:"SINKS"`
//	}
//
//	var e Env
//	if err := envloader.Load(&e); err != nil {
//		log.Fatal(err)
//	}
package envloader
