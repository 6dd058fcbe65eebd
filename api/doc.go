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
// Package api executa lotes de chamadas HTTP autenticadas de forma concorrente,
// coletando um resultado por tarefa.
//
// Visão Geral:
// Uma Task é um conjunto de parâmetros de query. O Executor distribui as tarefas
// de um lote entre um número limitado de workers; cada worker usa um Caller para
// fazer o GET com o bearer token obtido na hora de uma auth.Source. Falhas de uma
// tarefa (status fora de 2xx, erro de rede, credencial ausente, panic) ficam
// registradas apenas no resultado dela e nunca interrompem o lote.
//
// Funcionalidades Principais:
//   - HTTPCaller: GET com Authorization Bearer e parâmetros na query string.
//   - Executor: worker pool com limite configurável e mapa de resultados protegido.
//   - ExecutePaged: busca paginada por offset (startAt/maxResults/total).
//
// Exemplo de Uso:
//
//	caller := api.NewHTTPCaller(auth.NewEnvSource("JIRA_TOKEN"), 30*time.Second, logger)
//	exec := api.NewExecutor(caller, api.ExecutorConfig{
//		URL:     "https://jira.example.com/rest/api/2/search",
//		Workers: 8,
//		Logger:  logger,
//	})
//
//	results := exec.Execute(ctx, []api.Task{
//		{"jql": "project = OPS"},
//		{"jql": "project = DEV"},
//	})
//	for _, r := range results.Succeeded() {
//		fmt.Println(r.Task.Key(), r.Body)
//	}
//
// O Executor retorna somente depois que todas as tarefas terminaram, e o conjunto
// de chaves do resultado é sempre igual ao conjunto de chaves das tarefas enviadas.
package api
